package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncSubmission("graded")
	m.IncSubmission("graded")
	m.IncSubmission("duplicate")
	m.IncSessions()
	m.IncSessions()
	m.DecSessions()

	if got := testutil.ToFloat64(m.Submissions.WithLabelValues("graded")); got != 2 {
		t.Fatalf("expected 2 graded submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 1 {
		t.Fatalf("expected 1 active session, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncSubmission("graded")
	m.ObservePublish(1)
	m.IncViolation("fullscreen_exit")
	m.DecSessions()
}
