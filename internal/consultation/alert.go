package consultation

import (
	"github.com/google/uuid"
)

// AlertEventType tags escalation events on the alert topic.
const AlertEventType = "triage.escalated"

// Alert is the event published for every escalation. EventID lets consumers
// drop duplicates from at-least-once delivery.
type Alert struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Escalation
}

// NewAlert wraps e in a new event.
func NewAlert(e Escalation) Alert {
	return Alert{EventID: uuid.New().String(), EventType: AlertEventType, Escalation: e}
}
