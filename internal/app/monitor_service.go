// internal/app/monitor_service.go
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coop_shift_notifier/internal/domain/notification"
	"coop_shift_notifier/internal/domain/shift"
	"coop_shift_notifier/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const modeMonitor = "monitor"

// CatalogSource fetches a fresh shift catalog for one committee.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, committeeID int) (shift.Catalog, error)
}

// MonitorTarget is the single shift type watched in monitor mode.
type MonitorTarget struct {
	CommitteeID int
	Name        string
	Keyword     string // Optional: only shifts whose description contains it count
}

func (t MonitorTarget) conditionKey() string {
	return fmt.Sprintf("committee:%d:%s", t.CommitteeID, strings.ToLower(t.Keyword))
}

// MonitorService alerts once when shifts of the target type appear and stays
// quiet until they disappear again.
type MonitorService struct {
	catalogs CatalogSource
	target   MonitorTarget
	sinks    []notification.AlertSink
	gate     *AlertGate
	metrics  *metrics.Metrics
	logger   *logrus.Entry
}

func NewMonitorService(
	catalogs CatalogSource,
	target MonitorTarget,
	sinks []notification.AlertSink,
	m *metrics.Metrics,
	logger *logrus.Entry,
) *MonitorService {
	return &MonitorService{
		catalogs: catalogs,
		target:   target,
		sinks:    sinks,
		gate:     NewAlertGate(),
		metrics:  m,
		logger:   logger,
	}
}

// Snapshot fetches the catalog for the target without touching alert state.
func (s *MonitorService) Snapshot(ctx context.Context) (shift.Catalog, error) {
	catalog, err := s.catalogs.FetchCatalog(ctx, s.target.CommitteeID)
	if err != nil {
		return shift.Catalog{}, err
	}
	return s.filter(catalog), nil
}

// RunCycle performs one fetch and advances the alert state machine.
func (s *MonitorService) RunCycle(ctx context.Context) (err error) {
	started := time.Now()
	log := s.logger.WithFields(logrus.Fields{"cycle_id": uuid.NewString(), "shift": s.target.Name})
	defer func() { s.metrics.ObserveCycle(modeMonitor, started, err) }()

	catalog, err := s.Snapshot(ctx)
	if err != nil {
		log.WithError(err).Error("Shift fetch failed, skipping cycle")
		return fmt.Errorf("monitor cycle aborted: %w", err)
	}
	s.metrics.SetCatalogShifts(modeMonitor, catalog.ShiftCount())
	if unknown := catalog.UnknownDays(); unknown > 0 {
		log.WithField("unknown_days", unknown).Warn("Some days could not be classified")
	}

	key := s.target.conditionKey()
	switch s.gate.Evaluate(key, catalog.HasShifts()) {
	case TransitionNotify:
		log.WithField("shifts", catalog.ShiftCount()).Info("Shifts found, sending alert")
		if s.sendAlert(ctx, log, s.buildAlert(catalog)) {
			s.gate.Suppress(key)
		} else {
			log.Warn("Alert could not be delivered on any channel, will retry next cycle")
		}
	case TransitionPersist:
		s.metrics.IncSuppressed()
		log.Info("Alert condition persists, but alert already sent")
	case TransitionClear:
		log.Info("Alert condition cleared")
	default:
		log.Info("No shifts found")
	}
	return nil
}

// filter applies the optional keyword so the alert condition and its content
// agree.
func (s *MonitorService) filter(catalog shift.Catalog) shift.Catalog {
	if s.target.Keyword == "" {
		return catalog
	}
	keyword := strings.ToLower(s.target.Keyword)
	filtered := catalog
	filtered.Days = make([]shift.DayBlock, 0, len(catalog.Days))
	for _, day := range catalog.Days {
		kept := day
		kept.Shifts = make([]shift.Record, 0, len(day.Shifts))
		for _, rec := range day.Shifts {
			if strings.Contains(strings.ToLower(rec.Description), keyword) {
				kept.Shifts = append(kept.Shifts, rec)
			}
		}
		// A listed day whose shifts were all filtered out has none of the target type.
		if day.Availability == shift.AvailabilityListed && len(kept.Shifts) == 0 {
			kept.Availability = shift.AvailabilityNone
		}
		filtered.Days = append(filtered.Days, kept)
	}
	return filtered
}

func (s *MonitorService) buildAlert(catalog shift.Catalog) notification.Alert {
	var summary strings.Builder
	for _, day := range catalog.Days {
		for _, rec := range day.Shifts {
			fmt.Fprintf(&summary, "%s %s  %s  %s\n%s\n", day.Day, day.Date, rec.TimeText, rec.Description, rec.Link)
		}
	}

	body, err := json.MarshalIndent(catalog.Days, "", "  ")
	if err != nil {
		body = []byte(summary.String())
	}

	return notification.Alert{
		Subject: fmt.Sprintf("Alert: Found %s shift!", s.target.Name),
		Summary: summary.String(),
		Body:    string(body),
	}
}

// sendAlert reports whether at least one sink accepted the alert.
func (s *MonitorService) sendAlert(ctx context.Context, log *logrus.Entry, alert notification.Alert) bool {
	delivered := false
	for _, sink := range s.sinks {
		channel := notification.ChannelName(sink)
		err := sink.SendAlert(ctx, alert)
		s.metrics.IncDelivery(channel, err)
		if err != nil {
			log.WithError(err).WithField("channel", channel).Error("Failed to send alert")
			continue
		}
		delivered = true
	}
	return delivered
}
