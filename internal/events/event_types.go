package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMemberRegistered EventType = "member_registered"
	EventLoginSucceeded   EventType = "login_succeeded"
	EventLoginFailed      EventType = "login_failed"
	EventLoginThrottled   EventType = "login_throttled"
	EventMemberLoggedOut  EventType = "member_logged_out"
)

// Event represents an auth event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	LoginName string      `json:"login_name"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with an ID and the current time.
func NewEvent(eventType EventType, loginName string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		LoginName: loginName,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LoginFailedPayload records why a login was rejected. Reason is internal only.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// MemberRegisteredPayload payload.
type MemberRegisteredPayload struct {
	Role string `json:"role"`
}
