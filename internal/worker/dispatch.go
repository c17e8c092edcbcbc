package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/infrastructure/redpanda"
	"github.com/dorost/consult-engine/pkg/workerpool"
)

// Submitter runs a task and waits for its result.
type Submitter interface {
	SubmitWait(ctx context.Context, task *workerpool.Task) (*workerpool.Result, error)
}

// DeadLetter is published for records that can never be processed.
type DeadLetter struct {
	OriginalTopic string    `json:"original_topic"`
	Partition     int32     `json:"partition"`
	Offset        int64     `json:"offset"`
	Key           string    `json:"key,omitempty"`
	Value         []byte    `json:"value"`
	Error         string    `json:"error"`
	Attempts      int       `json:"attempts"`
	FailedAt      time.Time `json:"failed_at"`
}

// Dispatch returns a consumer handler that runs each record on pool. Records
// failing permanently are parked on deadLetterTopic and acknowledged; other
// failures are returned so the record is not marked.
func Dispatch(pool Submitter, pub Publisher, deadLetterTopic string, onConsumed func(), logger *zap.Logger) redpanda.MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, msg *redpanda.ConsumedMessage) error {
		if onConsumed != nil {
			onConsumed()
		}
		task := &workerpool.Task{
			ID:      fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset),
			Payload: msg.Value,
			Context: ctx,
		}
		res, err := pool.SubmitWait(ctx, task)
		if err != nil {
			return fmt.Errorf("submit %s: %w", task.ID, err)
		}
		if res.Success {
			return nil
		}
		if !workerpool.IsPermanent(res.Error) {
			return res.Error
		}

		logger.Warn("consultation request dead-lettered",
			zap.String("task_id", task.ID),
			zap.Error(res.Error))
		dl, err := json.Marshal(DeadLetter{
			OriginalTopic: msg.Topic,
			Partition:     msg.Partition,
			Offset:        msg.Offset,
			Key:           string(msg.Key),
			Value:         msg.Value,
			Error:         res.Error.Error(),
			Attempts:      res.Attempts,
			FailedAt:      time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("marshal dead letter: %w", err)
		}
		return pub.Publish(ctx, deadLetterTopic, string(msg.Key), dl)
	}
}
