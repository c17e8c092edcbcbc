package redpanda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dorost/consult-engine/internal/consultation"
)

// Publisher sends one record and waits for the acknowledgement.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// AlertPublisher records escalations straight to the alert topic. It is the
// recorder used when no database is configured; with one, escalations go
// through the outbox instead.
type AlertPublisher struct {
	pub   Publisher
	topic string
}

func NewAlertPublisher(pub Publisher) *AlertPublisher {
	return &AlertPublisher{pub: pub, topic: TopicTriageAlerts}
}

// RecordEscalation publishes e keyed by consultation id.
func (a *AlertPublisher) RecordEscalation(ctx context.Context, e consultation.Escalation) error {
	payload, err := json.Marshal(consultation.NewAlert(e))
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	return a.pub.Publish(ctx, a.topic, e.ConsultationID, payload)
}
