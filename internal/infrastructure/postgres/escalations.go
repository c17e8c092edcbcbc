package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/consultation"
)

const aggregateConsultation = "consultation"

// EscalationStore writes the audit row and the alert outbox entry of an
// escalation in one transaction.
type EscalationStore struct {
	pool       *pgxpool.Pool
	alertTopic string
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewEscalationStore(pool *pgxpool.Pool, alertTopic string, logger *zap.Logger) *EscalationStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationStore{
		pool:       pool,
		alertTopic: alertTopic,
		logger:     logger,
		tracer:     otel.Tracer("escalation-store"),
	}
}

// RecordEscalation implements consultation.EscalationRecorder.
func (s *EscalationStore) RecordEscalation(ctx context.Context, e consultation.Escalation) error {
	ctx, span := s.tracer.Start(ctx, "record_escalation",
		trace.WithAttributes(
			attribute.String("consultation_id", e.ConsultationID),
			attribute.String("urgency", e.Urgency.String()),
		))
	defer span.End()

	alert, err := json.Marshal(consultation.NewAlert(e))
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertAudit(ctx, tx, e); err != nil {
			return err
		}
		return WriteEntry(ctx, tx, &OutboxEntry{
			AggregateID:   e.ConsultationID,
			AggregateType: aggregateConsultation,
			EventType:     consultation.AlertEventType,
			Payload:       alert,
			KafkaTopic:    s.alertTopic,
			KafkaKey:      e.ConsultationID,
		})
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("record escalation %s: %w", e.ConsultationID, err)
	}

	s.logger.Debug("escalation recorded", zap.String("consultation_id", e.ConsultationID))
	return nil
}

func insertAudit(ctx context.Context, tx pgx.Tx, e consultation.Escalation) error {
	query := `
		INSERT INTO escalation_audit (consultation_id, status, urgency, flag_ids, reasons, confidence, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	flags := e.FlagIDs
	if flags == nil {
		flags = []string{}
	}
	reasons := e.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	_, err := tx.Exec(ctx, query,
		e.ConsultationID, string(e.Status), e.Urgency.String(), flags, reasons, e.Confidence, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert escalation audit: %w", err)
	}
	return nil
}

// AuditRecord is one stored escalation.
type AuditRecord struct {
	ConsultationID string    `json:"consultation_id"`
	Status         string    `json:"status"`
	Urgency        string    `json:"urgency"`
	FlagIDs        []string  `json:"flag_ids"`
	Reasons        []string  `json:"reasons"`
	Confidence     float64   `json:"confidence"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Recent returns the newest escalations first.
func (s *EscalationStore) Recent(ctx context.Context, limit int) ([]AuditRecord, error) {
	query := `
		SELECT consultation_id::text, status, urgency, flag_ids, reasons, confidence::float8, occurred_at
		FROM escalation_audit
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query escalations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AuditRecord, error) {
		var r AuditRecord
		err := row.Scan(&r.ConsultationID, &r.Status, &r.Urgency, &r.FlagIDs, &r.Reasons, &r.Confidence, &r.OccurredAt)
		return r, err
	})
}
