package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coop_shift_notifier"

// Metrics holds Prometheus metrics for the check and monitor cycles.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// CyclesTotal counts finished cycles by mode and result.
	CyclesTotal *prometheus.CounterVec

	// CycleDuration is the wall time of a cycle.
	CycleDuration *prometheus.HistogramVec

	// CatalogShifts is the number of shifts in the most recent catalog.
	CatalogShifts *prometheus.GaugeVec

	// MatchesTotal counts preference matches found.
	MatchesTotal prometheus.Counter

	// DeliveriesTotal counts notification attempts by channel and status.
	DeliveriesTotal *prometheus.CounterVec

	// AlertsSuppressedTotal counts cycles where an alert was withheld.
	AlertsSuppressedTotal prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Total number of fetch-match-notify cycles",
			},
			[]string{"mode", "result"},
		),

		CycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Time to run one cycle",
				Buckets:   []float64{.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),

		CatalogShifts: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_shifts",
				Help:      "Shifts found in the latest catalog",
			},
			[]string{"mode"},
		),

		MatchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Total number of preference matches found",
			},
		),

		DeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of notification deliveries",
			},
			[]string{"channel", "status"},
		),

		AlertsSuppressedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_suppressed_total",
				Help:      "Cycles where a persisting condition was not re-alerted",
			},
		),
	}
}

// ObserveCycle records the outcome and duration of a cycle.
func (m *Metrics) ObserveCycle(mode string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CyclesTotal.WithLabelValues(mode, result).Inc()
	m.CycleDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

// SetCatalogShifts records the size of the latest catalog.
func (m *Metrics) SetCatalogShifts(mode string, n int) {
	if m == nil {
		return
	}
	m.CatalogShifts.WithLabelValues(mode).Set(float64(n))
}

// AddMatches increments the match counter.
func (m *Metrics) AddMatches(n int) {
	if m == nil {
		return
	}
	m.MatchesTotal.Add(float64(n))
}

// IncDelivery increments the delivery counter for a channel.
func (m *Metrics) IncDelivery(channel string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.DeliveriesTotal.WithLabelValues(channel, status).Inc()
}

// IncSuppressed increments the suppressed alert counter.
func (m *Metrics) IncSuppressed() {
	if m == nil {
		return
	}
	m.AlertsSuppressedTotal.Inc()
}
