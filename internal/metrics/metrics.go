package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use through a nil pointer; every recorder is a no-op then.
type Metrics struct {
	Submissions        *prometheus.CounterVec
	AutoSubmissions    prometheus.Counter
	Publications       prometheus.Counter
	PublishDuration    prometheus.Histogram
	ProctorViolations  *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	CommissionsCreated prometheus.Counter
	CacheLookups       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deepshift_submissions_total",
			Help: "Submissions handled by the grading engine by outcome",
		}, []string{"outcome"}),
		AutoSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepshift_auto_submissions_total",
			Help: "Submissions triggered by the session timer",
		}),
		Publications: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepshift_publications_total",
			Help: "Result publication runs",
		}),
		PublishDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deepshift_publish_duration_seconds",
			Help:    "Time spent ranking and persisting results",
			Buckets: prometheus.DefBuckets,
		}),
		ProctorViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deepshift_proctor_violations_total",
			Help: "Proctoring violations by kind",
		}, []string{"kind"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deepshift_proctor_sessions_active",
			Help: "Number of open proctoring sessions",
		}),
		CommissionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepshift_commissions_created_total",
			Help: "Creator earnings created on payment approval",
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deepshift_results_cache_lookups_total",
			Help: "Published results cache lookups by status",
		}, []string{"status"}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAutoSubmission() {
	if m == nil {
		return
	}
	m.AutoSubmissions.Inc()
}

func (m *Metrics) ObservePublish(seconds float64) {
	if m == nil {
		return
	}
	m.Publications.Inc()
	m.PublishDuration.Observe(seconds)
}

func (m *Metrics) IncViolation(kind string) {
	if m == nil {
		return
	}
	m.ProctorViolations.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncSessions() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) DecSessions() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) IncCommission() {
	if m == nil {
		return
	}
	m.CommissionsCreated.Inc()
}

func (m *Metrics) IncCacheLookup(status string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(status).Inc()
}
