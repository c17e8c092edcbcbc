// Package worker turns consultation requests consumed from the broker into
// results on the results topic. Each request runs at most once per
// idempotency key; redeliveries republish the stored receipt.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/pkg/idempotency"
	"github.com/dorost/consult-engine/pkg/workerpool"
)

// HandlerName tags inbox entries written by this package.
const HandlerName = "consultation"

// RequestMessage is the value of a record on the requests topic.
type RequestMessage struct {
	// RequestID is the idempotency key. Without one the key is a hash of
	// the record value.
	RequestID string               `json:"request_id,omitempty"`
	Request   consultation.Request `json:"request"`
}

// ResultMessage is the value published to the results topic.
type ResultMessage struct {
	RequestID      string              `json:"request_id"`
	ConsultationID string              `json:"consultation_id"`
	Status         consultation.Status `json:"status"`
	Urgency        knowledge.Urgency   `json:"urgency"`
	Escalate       bool                `json:"escalate"`
	FlagIDs        []string            `json:"flag_ids,omitempty"`
	// Result is nil on a redelivery: the inbox keeps only the receipt
	// fields, never patient text.
	Result      *consultation.Result `json:"result,omitempty"`
	ProcessedAt time.Time            `json:"processed_at"`
}

// Receipt returns m without the consultation body.
func (m ResultMessage) Receipt() ResultMessage {
	m.Result = nil
	return m
}

// Consulter runs one consultation.
type Consulter interface {
	Consult(ctx context.Context, req consultation.Request) (consultation.Result, error)
}

// Publisher sends one record and waits for the acknowledgement.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Handler processes request records.
type Handler struct {
	service      Consulter
	inbox        *idempotency.Inbox
	publisher    Publisher
	resultsTopic string
	logger       *zap.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

func NewHandler(service Consulter, inbox *idempotency.Inbox, publisher Publisher, resultsTopic string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:      service,
		inbox:        inbox,
		publisher:    publisher,
		resultsTopic: resultsTopic,
		logger:       logger,
		tracer:       otel.Tracer("triage-worker"),
		now:          time.Now,
	}
}

// Handle processes one record value. Errors wrapped with
// workerpool.Permanent must not be retried or redelivered.
func (h *Handler) Handle(ctx context.Context, value []byte) error {
	ctx, span := h.tracer.Start(ctx, "handle_consultation_request")
	defer span.End()

	var msg RequestMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return workerpool.Permanent(fmt.Errorf("decode request: %w", err))
	}
	if err := msg.Request.Validate(); err != nil {
		return workerpool.Permanent(err)
	}

	key := idempotency.GenerateKey(msg.RequestID, value)
	span.SetAttributes(attribute.String("idempotency_key", key))

	// The inbox gets no payload and only the receipt as its result, so
	// patient text never reaches it.
	var full []byte
	processed, err := h.inbox.Process(ctx, key, HandlerName, nil, func(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
		out, err := h.consult(ctx, key, msg.Request)
		if err != nil {
			return nil, err
		}
		if full, err = json.Marshal(out); err != nil {
			return nil, workerpool.Permanent(fmt.Errorf("encode result: %w", err))
		}
		receipt, err := json.Marshal(out.Receipt())
		if err != nil {
			return nil, workerpool.Permanent(fmt.Errorf("encode receipt: %w", err))
		}
		return receipt, nil
	})
	switch {
	case errors.Is(err, idempotency.ErrDuplicateMessage):
		// Finished by a concurrent delivery between Get and Start.
		return nil
	case errors.Is(err, idempotency.ErrPreviouslyFailed):
		return workerpool.Permanent(err)
	case err != nil:
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Bool("duplicate", full == nil))
	value = processed.Result
	if full != nil {
		value = full
	}
	if err := h.publisher.Publish(ctx, h.resultsTopic, key, value); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publish result: %w", err)
	}
	return nil
}

func (h *Handler) consult(ctx context.Context, key string, req consultation.Request) (ResultMessage, error) {
	res, err := h.service.Consult(ctx, req)
	if err != nil {
		if errors.Is(err, consultation.ErrEmptyRequest) || errors.Is(err, consultation.ErrInvalidRequest) {
			return ResultMessage{}, workerpool.Permanent(err)
		}
		return ResultMessage{}, err
	}

	h.logger.Info("consultation processed",
		zap.String("request_id", key),
		zap.String("consultation_id", res.ID),
		zap.String("status", string(res.Status)),
		zap.Bool("escalate", res.Escalate))

	return ResultMessage{
		RequestID:      key,
		ConsultationID: res.ID,
		Status:         res.Status,
		Urgency:        res.Urgency,
		Escalate:       res.Escalate,
		FlagIDs:        res.RedFlags.FlagIDs(),
		Result:         &res,
		ProcessedAt:    h.now().UTC(),
	}, nil
}

// Task adapts Handle to a workerpool.WorkerFunc. The task payload is the
// record value.
func (h *Handler) Task(ctx context.Context, task *workerpool.Task) *workerpool.Result {
	value, ok := task.Payload.([]byte)
	if !ok {
		return &workerpool.Result{Error: workerpool.Permanent(fmt.Errorf("unexpected payload %T", task.Payload))}
	}
	if err := h.Handle(ctx, value); err != nil {
		return &workerpool.Result{Error: err}
	}
	return &workerpool.Result{Success: true}
}
