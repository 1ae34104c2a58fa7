package proctor_service

import (
	"time"

	"github.com/google/uuid"

	"github.com/tcp_snm/deepshift/internal/service/submission_service"
)

type State string

const (
	StateAwaitingFullscreen State = "awaiting_fullscreen"
	StateActive             State = "active"
	StateSuspended          State = "suspended"
	StateSubmitted          State = "submitted"
	StateAutoSubmitted      State = "auto_submitted"
	StateAbandoned          State = "abandoned"
)

// Terminal states accept no further events.
func (s State) Terminal() bool {
	switch s {
	case StateSubmitted, StateAutoSubmitted, StateAbandoned:
		return true
	}
	return false
}

type EventType string

const (
	EventFullscreenGranted  EventType = "fullscreen_granted"
	EventFullscreenDeclined EventType = "fullscreen_declined"
	EventFullscreenExit     EventType = "fullscreen_exit"
	EventVisibilityHidden   EventType = "visibility_hidden"
	EventVisibilityVisible  EventType = "visibility_visible"
	EventClipboard          EventType = "clipboard"
	EventAnswer             EventType = "answer"
	EventSubmit             EventType = "submit"
)

// Event is sent by the client.
type Event struct {
	Type       EventType `json:"type"`
	QuestionID string    `json:"questionId,omitempty"`
	Value      string    `json:"value,omitempty"`
	// copy, paste or select_all for clipboard events
	Action string `json:"action,omitempty"`
}

type PushType string

const (
	PushState      PushType = "state"
	PushTick       PushType = "tick"
	PushWarning    PushType = "warning"
	PushSuppressed PushType = "suppressed"
	PushSubmitted  PushType = "submitted"
	PushError      PushType = "error"
)

// Push is sent to the client.
type Push struct {
	Type             PushType                                     `json:"type"`
	State            State                                        `json:"state,omitempty"`
	TabSwitchCount   *int32                                       `json:"tabSwitchCount,omitempty"`
	RemainingSeconds *int64                                       `json:"remainingSeconds,omitempty"`
	Kind             string                                       `json:"kind,omitempty"`
	Until            *time.Time                                   `json:"until,omitempty"`
	Result           *submission_service.Result                   `json:"result,omitempty"`
	QuestionResults  map[string]submission_service.QuestionResult `json:"questionResults,omitempty"`
	Message          string                                       `json:"message,omitempty"`
}

type sessionKey struct {
	userID    uuid.UUID
	contestID uuid.UUID
}
