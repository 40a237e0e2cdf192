package events

import (
	"time"

	"github.com/google/uuid"
)

// Notification event types delivered to linked sessions.
const (
	TypeTransferSent      = "transfer_sent"
	TypeTransferReceived  = "transfer_received"
	TypeCredentialChanged = "credential_changed"
)

// Security event types broadcast to administrators.
const (
	TypeFailedLogin     = "failed_login"
	TypeSuspiciousLogin = "suspicious_login"
)

// NotificationEvent is a message for one linked session. Delivery is
// best-effort: the dispatcher collaborator owns retries, and a lost
// notification never affects ledger state.
type NotificationEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// SecurityEvent is an administrative signal (failed or suspicious login
// attempts). It is never surfaced to the caller that triggered it.
type SecurityEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	MelonID   string    `json:"melon_id"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Emitter publishes events for the dispatcher collaborator to deliver.
// Implementations must not block the caller beyond their produce timeout
// and must never return delivery failures as hard errors.
type Emitter interface {
	EmitNotification(sessionID, eventType, text string)
	EmitSecurity(eventType, melonID, detail string)
}

func newNotification(sessionID, eventType, text string) NotificationEvent {
	return NotificationEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: sessionID,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Source:    "bursar",
	}
}

func newSecurity(eventType, melonID, detail string) SecurityEvent {
	return SecurityEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		MelonID:   melonID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
		Source:    "bursar",
	}
}
