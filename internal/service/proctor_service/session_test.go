package proctor_service

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

var end = time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

func newTestSession(c *clock) *Session {
	return NewSession(end, 5*time.Second, c.now)
}

func TestSessionRequiresFullscreen(t *testing.T) {
	c := &clock{t: end.Add(-time.Hour)}
	s := newTestSession(c)

	if pushes, submit := s.Handle(Event{Type: EventSubmit}); submit || len(pushes) != 1 || pushes[0].Type != PushError {
		t.Fatalf("submit before fullscreen must be refused, got %+v %v", pushes, submit)
	}
	s.Handle(Event{Type: EventAnswer, QuestionID: "q1", Value: "A"})
	if _, ok := s.BeginSubmit(false); ok {
		t.Fatalf("awaiting session cannot submit")
	}

	s.Handle(Event{Type: EventFullscreenDeclined})
	if s.State() != StateAbandoned {
		t.Fatalf("declining fullscreen should abandon, got %s", s.State())
	}
}

func TestSessionViolationsSuspendAndCount(t *testing.T) {
	c := &clock{t: end.Add(-time.Hour)}
	s := newTestSession(c)
	s.Handle(Event{Type: EventFullscreenGranted})
	if s.State() != StateActive {
		t.Fatalf("expected active, got %s", s.State())
	}

	pushes, _ := s.Handle(Event{Type: EventVisibilityHidden})
	if s.State() != StateSuspended || s.TabSwitchCount() != 1 {
		t.Fatalf("expected suspended with 1 switch, got %s %d", s.State(), s.TabSwitchCount())
	}
	if pushes[0].Type != PushWarning || pushes[0].Until == nil || !pushes[0].Until.Equal(c.t.Add(5*time.Second)) {
		t.Fatalf("expected a 5s warning, got %+v", pushes[0])
	}

	// a second violation while suspended is not counted twice
	s.Handle(Event{Type: EventFullscreenExit})
	if s.TabSwitchCount() != 1 {
		t.Fatalf("expected count to stay 1, got %d", s.TabSwitchCount())
	}

	// fullscreen does not clear a visibility suspension
	s.Handle(Event{Type: EventFullscreenGranted})
	if s.State() != StateSuspended {
		t.Fatalf("expected still suspended, got %s", s.State())
	}
	s.Handle(Event{Type: EventVisibilityVisible})
	if s.State() != StateActive {
		t.Fatalf("expected active again, got %s", s.State())
	}

	s.Handle(Event{Type: EventFullscreenExit})
	s.Handle(Event{Type: EventFullscreenGranted})
	if s.State() != StateActive || s.TabSwitchCount() != 2 {
		t.Fatalf("expected active with 2 switches, got %s %d", s.State(), s.TabSwitchCount())
	}
}

func TestSessionClipboardSuppressed(t *testing.T) {
	c := &clock{t: end.Add(-time.Hour)}
	s := newTestSession(c)
	s.Handle(Event{Type: EventFullscreenGranted})
	pushes, _ := s.Handle(Event{Type: EventClipboard, Action: "paste"})
	if len(pushes) != 1 || pushes[0].Type != PushSuppressed || pushes[0].Kind != "paste" {
		t.Fatalf("expected suppressed paste, got %+v", pushes)
	}
	if s.TabSwitchCount() != 0 || s.State() != StateActive {
		t.Fatalf("clipboard must not count as a tab switch")
	}
}

func TestSessionSubmitIsSingleShot(t *testing.T) {
	c := &clock{t: end.Add(-time.Hour)}
	s := newTestSession(c)
	s.Handle(Event{Type: EventFullscreenGranted})
	s.Handle(Event{Type: EventAnswer, QuestionID: "q1", Value: "B"})
	s.Handle(Event{Type: EventVisibilityHidden})

	if _, submit := s.Handle(Event{Type: EventSubmit}); !submit {
		t.Fatalf("submit event should request submission")
	}
	req, ok := s.BeginSubmit(false)
	if !ok || req.Answers["q1"] != "B" || req.TabSwitchCount != 1 || req.AutoSubmitted {
		t.Fatalf("unexpected submission %+v %v", req, ok)
	}
	if s.State() != StateSubmitted {
		t.Fatalf("expected submitted, got %s", s.State())
	}
	if _, ok := s.BeginSubmit(true); ok {
		t.Fatalf("second submission must be refused")
	}
	if pushes, _ := s.Handle(Event{Type: EventAnswer, QuestionID: "q1", Value: "C"}); len(pushes) != 1 || pushes[0].Type != PushError {
		t.Fatalf("terminal session must reject events")
	}
	if s.Abandon() {
		t.Fatalf("submitted session cannot be abandoned")
	}
}

func TestSessionTickUsesEndTime(t *testing.T) {
	c := &clock{t: end.Add(-90*time.Second - 500*time.Millisecond)}
	s := newTestSession(c)
	s.Handle(Event{Type: EventFullscreenGranted})

	if remaining, expired := s.Tick(); remaining != 90 || expired {
		t.Fatalf("expected 90s left, got %d %v", remaining, expired)
	}

	c.t = end
	if remaining, expired := s.Tick(); remaining != 0 || !expired {
		t.Fatalf("expected expiry at end, got %d %v", remaining, expired)
	}
	req, ok := s.BeginSubmit(true)
	if !ok || !req.AutoSubmitted || s.State() != StateAutoSubmitted {
		t.Fatalf("expected auto submission, got %+v %s", req, s.State())
	}
	if _, expired := s.Tick(); expired {
		t.Fatalf("terminal session cannot expire again")
	}
}

func TestSessionExpiresWhileAwaiting(t *testing.T) {
	c := &clock{t: end.Add(time.Second)}
	s := newTestSession(c)
	if _, expired := s.Tick(); expired || s.State() != StateAbandoned {
		t.Fatalf("unstarted session should be abandoned at the deadline, got %s", s.State())
	}
}
