package proctor_service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/metrics"
	"github.com/tcp_snm/deepshift/internal/service/submission_service"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []submission_service.SubmissionRequest
	delay time.Duration
}

func (f *fakeSubmitter) SubmitAs(
	_ context.Context,
	userID uuid.UUID,
	contestID uuid.UUID,
	req submission_service.SubmissionRequest,
) (submission_service.SubmissionResponse, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return submission_service.SubmissionResponse{
		Result:  submission_service.Result{ContestID: contestID, UserID: userID, Score: 10},
		Message: "Submission successful",
	}, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type atomicClock struct{ nanos atomic.Int64 }

func (c *atomicClock) set(t time.Time) { c.nanos.Store(t.UnixNano()) }
func (c *atomicClock) now() time.Time  { return time.Unix(0, c.nanos.Load()).UTC() }

func newManager(sub Submitter, c *atomicClock) *Manager {
	m := &Manager{
		Submitter:    sub,
		Now:          c.now,
		TickInterval: 5 * time.Millisecond,
	}
	m.Start()
	return m
}

// drain collects pushes until the session is done.
func drain(t *testing.T, ls *LiveSession) []Push {
	t.Helper()
	var out []Push
	timeout := time.After(2 * time.Second)
	for {
		select {
		case p := <-ls.Pushes():
			out = append(out, p)
		case <-ls.Done():
			for {
				select {
				case p := <-ls.Pushes():
					out = append(out, p)
				default:
					return out
				}
			}
		case <-timeout:
			t.Fatalf("session did not finish")
		}
	}
}

func lastOfType(pushes []Push, typ PushType) *Push {
	for i := len(pushes) - 1; i >= 0; i-- {
		if pushes[i].Type == typ {
			return &pushes[i]
		}
	}
	return nil
}

func TestManagerAutoSubmitsAtDeadline(t *testing.T) {
	c := &atomicClock{}
	c.set(end.Add(-2 * time.Second))
	sub := &fakeSubmitter{}
	m := newManager(sub, c)

	ls, err := m.Open(uuid.New(), uuid.New(), end)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ls.Close()

	ls.Dispatch(Event{Type: EventFullscreenGranted})
	ls.Dispatch(Event{Type: EventAnswer, QuestionID: "q1", Value: "A"})
	c.set(end)

	pushes := drain(t, ls)
	submitted := lastOfType(pushes, PushSubmitted)
	if submitted == nil || submitted.State != StateAutoSubmitted || submitted.Result == nil {
		t.Fatalf("expected auto submitted push, got %+v", pushes)
	}
	if sub.count() != 1 || !sub.calls[0].AutoSubmitted || sub.calls[0].Answers["q1"] != "A" {
		t.Fatalf("unexpected submissions %+v", sub.calls)
	}
}

func TestManagerManualAndTimerSubmitGradeOnce(t *testing.T) {
	c := &atomicClock{}
	c.set(end.Add(-time.Minute))
	sub := &fakeSubmitter{delay: 20 * time.Millisecond}
	m := newManager(sub, c)

	ls, err := m.Open(uuid.New(), uuid.New(), end)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ls.Close()
	ls.Dispatch(Event{Type: EventFullscreenGranted})

	go func() {
		c.set(end)
	}()
	ls.Dispatch(Event{Type: EventSubmit})
	drain(t, ls)

	// give a racing tick the chance to misbehave
	time.Sleep(30 * time.Millisecond)
	if sub.count() != 1 {
		t.Fatalf("expected exactly one grading call, got %d", sub.count())
	}
}

func TestManagerRejectsSecondSession(t *testing.T) {
	c := &atomicClock{}
	c.set(end.Add(-time.Hour))
	m := newManager(&fakeSubmitter{}, c)

	userID, contestID := uuid.New(), uuid.New()
	ls, err := m.Open(userID, contestID, end)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := m.Open(userID, contestID, end); !errors.Is(err, app_errors.ErrEntityAlreadyExist) {
		t.Fatalf("expected duplicate session error, got %v", err)
	}

	ls.Close()
	if m.Active() != 0 {
		t.Fatalf("session not released")
	}
	if ls.State() != StateAbandoned {
		t.Fatalf("disconnect should abandon, got %s", ls.State())
	}
	again, err := m.Open(userID, contestID, end)
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	again.Close()
}

func TestManagerDisconnectDoesNotSubmit(t *testing.T) {
	c := &atomicClock{}
	c.set(end.Add(-time.Hour))
	sub := &fakeSubmitter{}
	m := newManager(sub, c)

	ls, err := m.Open(uuid.New(), uuid.New(), end)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ls.Dispatch(Event{Type: EventFullscreenGranted})
	ls.Dispatch(Event{Type: EventAnswer, QuestionID: "q1", Value: "A"})
	ls.Close()

	c.set(end.Add(time.Minute))
	time.Sleep(20 * time.Millisecond)
	if sub.count() != 0 {
		t.Fatalf("abandoned session was graded")
	}
}

func TestManagerCountsOnlySuppressedClipboard(t *testing.T) {
	c := &atomicClock{}
	c.set(end.Add(-time.Minute))
	m := newManager(&fakeSubmitter{}, c)
	m.Metrics = metrics.New(prometheus.NewRegistry())

	ls, err := m.Open(uuid.New(), uuid.New(), end)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ls.Close()

	clipboard := m.Metrics.ProctorViolations.WithLabelValues("clipboard")

	// ignored before fullscreen is granted
	ls.Dispatch(Event{Type: EventClipboard, Action: "paste"})
	if got := testutil.ToFloat64(clipboard); got != 0 {
		t.Fatalf("expected no clipboard violation while awaiting fullscreen, got %v", got)
	}

	ls.Dispatch(Event{Type: EventFullscreenGranted})
	ls.Dispatch(Event{Type: EventClipboard, Action: "copy"})
	if got := testutil.ToFloat64(clipboard); got != 1 {
		t.Fatalf("expected one clipboard violation, got %v", got)
	}
}
