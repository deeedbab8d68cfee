// internal/app/shift_check_service.go
package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"coop_shift_notifier/internal/domain/notification"
	"coop_shift_notifier/internal/domain/preference"
	"coop_shift_notifier/internal/domain/shift"
	"coop_shift_notifier/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const modeCheck = "check"

// ShiftCheckService runs the multi-subscriber fetch-match-notify cycle.
type ShiftCheckService interface {
	// RunCycle fetches, matches and delivers new matches, maintaining each
	// preference's already-notified flag.
	RunCycle(ctx context.Context) (*CheckReport, error)
	// Preview fetches and matches without delivering or touching any flag.
	Preview(ctx context.Context) (*CheckReport, error)
}

// CheckReport summarises one cycle.
type CheckReport struct {
	CycleID     string                         `json:"cycle_id"`
	CheckedAt   time.Time                      `json:"checked_at"`
	Preferences int                            `json:"preferences"`
	Catalog     shift.Catalog                  `json:"catalog"`
	Matches     map[int64][]notification.Match `json:"matches"`
	Notified    int                            `json:"notified"`   // Successful deliveries
	Suppressed  int                            `json:"suppressed"` // Matches withheld because their preference was already notified
	Cleared     int                            `json:"cleared"`    // Preferences re-armed because they no longer match
	Failed      int                            `json:"failed"`     // Deliveries that failed or had no address
}

// ShiftCheckServiceImpl implements the ShiftCheckService interface.
type ShiftCheckServiceImpl struct {
	prefSource  preference.Source
	catalogs    CatalogSource
	sink        notification.MatchSink
	committeeID int
	metrics     *metrics.Metrics
	logger      *logrus.Entry
}

func NewShiftCheckServiceImpl(
	ps preference.Source,
	catalogs CatalogSource,
	sink notification.MatchSink,
	committeeID int, // Usually all committees: preferences filter by keyword
	m *metrics.Metrics,
	logger *logrus.Entry,
) *ShiftCheckServiceImpl {
	return &ShiftCheckServiceImpl{
		prefSource:  ps,
		catalogs:    catalogs,
		sink:        sink,
		committeeID: committeeID,
		metrics:     m,
		logger:      logger,
	}
}

func (s *ShiftCheckServiceImpl) RunCycle(ctx context.Context) (*CheckReport, error) {
	return s.run(ctx, true)
}

func (s *ShiftCheckServiceImpl) Preview(ctx context.Context) (*CheckReport, error) {
	return s.run(ctx, false)
}

func (s *ShiftCheckServiceImpl) run(ctx context.Context, deliver bool) (report *CheckReport, err error) {
	started := time.Now()
	report = &CheckReport{
		CycleID:   uuid.NewString(),
		CheckedAt: started,
		Matches:   map[int64][]notification.Match{},
	}
	log := s.logger.WithField("cycle_id", report.CycleID)
	if deliver {
		defer func() { s.metrics.ObserveCycle(modeCheck, started, err) }()
	}
	log.Info("Starting shift check")

	// 1. Load preferences
	prefs, err := s.prefSource.ListActive(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list active preferences")
		return nil, fmt.Errorf("failed to list active preferences: %w", err)
	}
	report.Preferences = len(prefs)
	if len(prefs) == 0 {
		log.Info("No active preferences found. Skipping shift fetch.")
		return report, nil
	}

	// 2. Fetch the catalog; a partial catalog would hide matches, so any failure aborts
	catalog, err := s.catalogs.FetchCatalog(ctx, s.committeeID)
	if err != nil {
		log.WithError(err).Error("Shift fetch failed, aborting cycle")
		return nil, fmt.Errorf("shift check aborted: %w", err)
	}
	report.Catalog = catalog
	s.metrics.SetCatalogShifts(modeCheck, catalog.ShiftCount())
	if unknown := catalog.UnknownDays(); unknown > 0 {
		log.WithField("unknown_days", unknown).Warn("Some days could not be classified")
	}

	// 3. Match
	report.Matches = MatchPreferences(catalog, prefs)
	total := 0
	for _, ms := range report.Matches {
		total += len(ms)
	}
	log.WithFields(logrus.Fields{
		"preferences": len(prefs),
		"shifts":      catalog.ShiftCount(),
		"owners":      len(report.Matches),
		"matches":     total,
	}).Info("Matched preferences against catalog")
	if !deliver {
		return report, nil
	}
	s.metrics.AddMatches(total)

	// 4. Re-arm preferences whose matches are gone
	s.clearResolved(ctx, log, prefs, report)

	// 5. Deliver per owner in a stable order
	owners := make([]int64, 0, len(report.Matches))
	for id := range report.Matches {
		owners = append(owners, id)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	for _, ownerID := range owners {
		s.notifyOwner(ctx, log.WithField("owner_id", ownerID), report.Matches[ownerID], report)
	}

	log.WithFields(logrus.Fields{
		"notified":   report.Notified,
		"suppressed": report.Suppressed,
		"cleared":    report.Cleared,
		"failed":     report.Failed,
	}).Info("Shift check completed")
	return report, nil
}

func (s *ShiftCheckServiceImpl) clearResolved(ctx context.Context, log *logrus.Entry, prefs []*preference.Preference, report *CheckReport) {
	matched := make(map[int64]bool)
	for _, ms := range report.Matches {
		for _, m := range ms {
			matched[m.Preference.ID] = true
		}
	}

	var toClear []int64
	for _, p := range prefs {
		if Step(p.AlreadyNotified, matched[p.ID]) == TransitionClear {
			toClear = append(toClear, p.ID)
		}
	}
	if len(toClear) == 0 {
		return
	}
	if err := s.prefSource.SetNotified(ctx, toClear, false); err != nil {
		log.WithError(err).WithField("preference_ids", toClear).Error("Failed to re-arm preferences")
		return
	}
	report.Cleared = len(toClear)
	log.WithField("preference_ids", toClear).Info("Alert condition cleared for preferences")
}

// notifyOwner delivers the owner's fresh matches, one message per delivery
// address, and flags the preferences involved once the message is accepted.
func (s *ShiftCheckServiceImpl) notifyOwner(ctx context.Context, log *logrus.Entry, matches []notification.Match, report *CheckReport) {
	var addresses []string
	batches := make(map[string][]notification.Match)
	for _, m := range matches {
		if Step(m.Preference.AlreadyNotified, true) == TransitionPersist {
			report.Suppressed++
			continue
		}
		addr := m.Preference.DeliveryAddress
		if _, seen := batches[addr]; !seen {
			addresses = append(addresses, addr)
		}
		batches[addr] = append(batches[addr], m)
	}
	if len(addresses) == 0 {
		log.Info("Matches persist, but owner was already notified")
		return
	}

	channel := notification.ChannelName(s.sink)
	for _, addr := range addresses {
		batch := batches[addr]
		if addr == "" {
			report.Failed++
			log.Warn("No delivery address found for owner")
			continue
		}

		recipient := notification.Recipient{
			OwnerID: batch[0].OwnerID,
			Name:    batch[0].Preference.OwnerName,
			Address: addr,
		}
		err := s.sink.DeliverMatches(ctx, recipient, batch)
		s.metrics.IncDelivery(channel, err)
		if err != nil {
			report.Failed++
			log.WithError(err).WithField("address", addr).Error("Failed to deliver matches")
			continue
		}
		report.Notified++
		log.WithFields(logrus.Fields{"address": addr, "matches": len(batch)}).Info("Sent shift notification")

		if err := s.prefSource.SetNotified(ctx, preferenceIDs(batch), true); err != nil {
			// The owner may be notified again next cycle.
			log.WithError(err).Error("Failed to flag preferences as notified")
		}
	}
}

func preferenceIDs(matches []notification.Match) []int64 {
	seen := make(map[int64]bool)
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		if !seen[m.Preference.ID] {
			seen[m.Preference.ID] = true
			ids = append(ids, m.Preference.ID)
		}
	}
	return ids
}
