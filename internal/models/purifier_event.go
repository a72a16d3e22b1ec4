package models

import "time"

// Journal event types.
const (
	EventActiveChange = "ACTIVE_CHANGE"
	EventModeChange   = "MODE_CHANGE"
	EventStateChange  = "STATE_CHANGE"
	EventIdentify     = "IDENTIFY"
	EventStartup      = "STARTUP"
)

// PurifierEvent is a single journal entry.
type PurifierEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // ACTIVE_CHANGE | MODE_CHANGE | STATE_CHANGE | IDENTIFY | STARTUP
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

var eventTypes = []string{
	EventActiveChange,
	EventModeChange,
	EventStateChange,
	EventIdentify,
	EventStartup,
}

// EventTypes lists every journal event type.
func EventTypes() []string {
	out := make([]string, len(eventTypes))
	copy(out, eventTypes)
	return out
}

// IsEventType reports whether s names a journal event type.
func IsEventType(s string) bool {
	for _, t := range eventTypes {
		if t == s {
			return true
		}
	}
	return false
}
