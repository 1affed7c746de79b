// Package metrics holds the Prometheus collectors for the consensus engine
// and the bill splitter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Transitions       *prometheus.CounterVec
	Votes             *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	VenueRequests     *prometheus.CounterVec
	BillComputations  *prometheus.CounterVec
	DependencyLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanji",
			Name:      "transitions_total",
			Help:      "Event status transitions.",
		}, []string{"from", "to"}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanji",
			Name:      "votes_total",
			Help:      "Vote toggles by resulting action.",
		}, []string{"action"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanji",
			Name:      "notifications_total",
			Help:      "Notifications recorded, by type and delivery status.",
		}, []string{"type", "status"}),
		VenueRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanji",
			Name:      "venue_requests_total",
			Help:      "Venue recommendation requests by result (ok, empty, unavailable).",
		}, []string{"result"}),
		BillComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanji",
			Name:      "bill_computations_total",
			Help:      "Bill split computations by mode.",
		}, []string{"mode"}),
		DependencyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kanji",
			Name:      "dependency_duration_seconds",
			Help:      "Latency of calls to the notification sink and venue provider.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dependency"}),
	}

	reg.MustRegister(
		m.Transitions,
		m.Votes,
		m.Notifications,
		m.VenueRequests,
		m.BillComputations,
		m.DependencyLatency,
	)
	return m
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Vote(action string) {
	if m == nil {
		return
	}
	m.Votes.WithLabelValues(action).Inc()
}

func (m *Metrics) Notification(typ, status string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(typ, status).Inc()
}

func (m *Metrics) VenueRequest(result string) {
	if m == nil {
		return
	}
	m.VenueRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) BillComputation(mode string) {
	if m == nil {
		return
	}
	m.BillComputations.WithLabelValues(mode).Inc()
}

// ObserveDependency records how long a call to dependency took, in seconds.
func (m *Metrics) ObserveDependency(dependency string, seconds float64) {
	if m == nil {
		return
	}
	m.DependencyLatency.WithLabelValues(dependency).Observe(seconds)
}
