package events

import "sync"

// Recorder is an Emitter that captures events in memory for tests.
type Recorder struct {
	mu            sync.Mutex
	Notifications []NotificationEvent
	Security      []SecurityEvent
}

// NewRecorder creates an in-memory event recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) EmitNotification(sessionID, eventType, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = append(r.Notifications, newNotification(sessionID, eventType, text))
}

func (r *Recorder) EmitSecurity(eventType, melonID, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Security = append(r.Security, newSecurity(eventType, melonID, detail))
}

// SecurityOfType returns recorded security events matching eventType
func (r *Recorder) SecurityOfType(eventType string) []SecurityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SecurityEvent
	for _, e := range r.Security {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
