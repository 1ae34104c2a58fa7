package proctor_service

import (
	"time"

	"github.com/tcp_snm/deepshift/internal/service/submission_service"
)

const DefaultWarningDuration = 5 * time.Second

// Session is the proctoring state machine of one attempt. It is not safe for
// concurrent use; LiveSession serializes access to it.
type Session struct {
	endTime         time.Time
	warningDuration time.Duration
	now             func() time.Time

	state          State
	suspendedBy    EventType
	tabSwitchCount int32
	answers        map[string]string
}

func NewSession(endTime time.Time, warningDuration time.Duration, now func() time.Time) *Session {
	if warningDuration <= 0 {
		warningDuration = DefaultWarningDuration
	}
	if now == nil {
		now = time.Now
	}
	return &Session{
		endTime:         endTime,
		warningDuration: warningDuration,
		now:             now,
		state:           StateAwaitingFullscreen,
		answers:         map[string]string{},
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) TabSwitchCount() int32 {
	return s.tabSwitchCount
}

// Remaining is the whole seconds left until the contest ends, never negative.
// It is derived from the end instant so every participant shares one
// deadline.
func (s *Session) Remaining() int64 {
	left := int64(s.endTime.Sub(s.now()) / time.Second)
	if left < 0 {
		return 0
	}
	return left
}

func (s *Session) statePush() Push {
	count := s.tabSwitchCount
	return Push{Type: PushState, State: s.state, TabSwitchCount: &count}
}

func (s *Session) violation(kind EventType) []Push {
	s.tabSwitchCount++
	s.state = StateSuspended
	s.suspendedBy = kind
	until := s.now().Add(s.warningDuration)
	return []Push{
		{Type: PushWarning, Kind: string(kind), Until: &until},
		s.statePush(),
	}
}

// Handle applies a client event. submit is true when the event asks for a
// manual submission; the caller then runs BeginSubmit.
func (s *Session) Handle(ev Event) (pushes []Push, submit bool) {
	if s.state.Terminal() {
		return []Push{{Type: PushError, Message: "proctoring session is not active"}}, false
	}

	switch ev.Type {
	case EventFullscreenGranted:
		if s.state == StateAwaitingFullscreen ||
			(s.state == StateSuspended && s.suspendedBy == EventFullscreenExit) {
			s.state = StateActive
			s.suspendedBy = ""
		}
		return []Push{s.statePush()}, false

	case EventFullscreenDeclined:
		if s.state == StateAwaitingFullscreen {
			s.state = StateAbandoned
		}
		return []Push{s.statePush()}, false

	case EventFullscreenExit, EventVisibilityHidden:
		if s.state != StateActive {
			return nil, false
		}
		return s.violation(ev.Type), false

	case EventVisibilityVisible:
		if s.state == StateSuspended && s.suspendedBy == EventVisibilityHidden {
			s.state = StateActive
			s.suspendedBy = ""
		}
		return []Push{s.statePush()}, false

	case EventClipboard:
		if s.state == StateAwaitingFullscreen {
			return nil, false
		}
		return []Push{{Type: PushSuppressed, Kind: ev.Action}}, false

	case EventAnswer:
		if s.state == StateAwaitingFullscreen || ev.QuestionID == "" {
			return nil, false
		}
		s.answers[ev.QuestionID] = ev.Value
		return nil, false

	case EventSubmit:
		if s.state == StateAwaitingFullscreen {
			return []Push{{Type: PushError, Message: "enter fullscreen to start the attempt"}}, false
		}
		return nil, true
	}

	return []Push{{Type: PushError, Message: "unknown event " + string(ev.Type)}}, false
}

// Tick reports the remaining seconds and whether the deadline was reached
// with the attempt still open.
func (s *Session) Tick() (remaining int64, expired bool) {
	remaining = s.Remaining()
	if remaining > 0 || s.state.Terminal() {
		return remaining, false
	}
	if s.state == StateAwaitingFullscreen {
		s.state = StateAbandoned
		return remaining, false
	}
	return remaining, true
}

// BeginSubmit moves the session to its terminal state and returns the
// submission to grade. Only the first call returns ok.
func (s *Session) BeginSubmit(auto bool) (req submission_service.SubmissionRequest, ok bool) {
	if s.state.Terminal() || s.state == StateAwaitingFullscreen {
		return submission_service.SubmissionRequest{}, false
	}
	s.state = StateSubmitted
	if auto {
		s.state = StateAutoSubmitted
	}

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return submission_service.SubmissionRequest{
		Answers:        answers,
		TabSwitchCount: s.tabSwitchCount,
		AutoSubmitted:  auto,
	}, true
}

// Abandon ends an open session without a submission.
func (s *Session) Abandon() bool {
	if s.state.Terminal() {
		return false
	}
	s.state = StateAbandoned
	return true
}
