package redpanda

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ConsumerConfig holds configuration for the Redpanda consumer
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
	// SessionTimeoutMS and HeartbeatIntervalMS tune group membership.
	SessionTimeoutMS    int64
	HeartbeatIntervalMS int64
	FetchMaxBytes       int32
	// StartOffset is earliest or latest; it only applies to partitions
	// without a committed offset.
	StartOffset string
}

// DefaultConsumerConfig returns defaults for the triage worker.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers:             []string{"localhost:9092"},
		GroupID:             "triage-worker",
		Topics:              []string{TopicConsultationRequests},
		SessionTimeoutMS:    30000,
		HeartbeatIntervalMS: 3000,
		FetchMaxBytes:       8 << 20,
		StartOffset:         "earliest",
	}
}

func (cfg ConsumerConfig) opts() ([]kgo.Opt, error) {
	switch {
	case len(cfg.Brokers) == 0:
		return nil, errors.New("consumer needs at least one broker")
	case cfg.GroupID == "":
		return nil, errors.New("consumer group is required")
	case len(cfg.Topics) == 0:
		return nil, errors.New("consumer needs at least one topic")
	}

	var reset kgo.Offset
	switch cfg.StartOffset {
	case "", "earliest":
		reset = kgo.NewOffset().AtStart()
	case "latest":
		reset = kgo.NewOffset().AtEnd()
	default:
		return nil, fmt.Errorf("unsupported start offset %q", cfg.StartOffset)
	}

	return []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ConsumeResetOffset(reset),
		kgo.SessionTimeout(time.Duration(cfg.SessionTimeoutMS) * time.Millisecond),
		kgo.HeartbeatInterval(time.Duration(cfg.HeartbeatIntervalMS) * time.Millisecond),
		kgo.FetchMaxBytes(cfg.FetchMaxBytes),
		kgo.AutoCommitMarks(),
		kgo.BlockRebalanceOnPoll(),
	}, nil
}

// MessageHandler is called for each consumed message
type MessageHandler func(ctx context.Context, msg *ConsumedMessage) error

// ConsumedMessage is one record handed to a MessageHandler.
type ConsumedMessage struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

func newConsumedMessage(record *kgo.Record) *ConsumedMessage {
	msg := &ConsumedMessage{
		Topic:     record.Topic,
		Partition: record.Partition,
		Offset:    record.Offset,
		Key:       record.Key,
		Value:     record.Value,
		Headers:   make(map[string]string, len(record.Headers)),
		Timestamp: record.Timestamp,
	}
	for _, h := range record.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Consumer polls a consumer group and calls the handler for every record.
// Partitions of one fetch are handled concurrently, records within a
// partition in order. Marked offsets are committed after each fetch.
type Consumer struct {
	client  *kgo.Client
	logger  *zap.Logger
	tracer  trace.Tracer
	handler MessageHandler

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	handled    atomic.Int64
	bytes      atomic.Int64
	failed     atomic.Int64
	lastCommit atomic.Int64
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if handler == nil {
		return nil, errors.New("message handler is required")
	}
	opts, err := cfg.opts()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		kgo.OnPartitionsAssigned(func(_ context.Context, _ *kgo.Client, assigned map[string][]int32) {
			logger.Info("partitions assigned", zap.Any("partitions", assigned))
		}),
		kgo.OnPartitionsRevoked(func(ctx context.Context, client *kgo.Client, revoked map[string][]int32) {
			logger.Info("partitions revoked", zap.Any("partitions", revoked))
			if err := client.CommitMarkedOffsets(ctx); err != nil {
				logger.Warn("commit on revoke failed", zap.Error(err))
			}
		}),
	)

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		client:  client,
		logger:  logger,
		tracer:  otel.Tracer("redpanda-consumer"),
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}, nil
}

func (c *Consumer) Start() {
	go c.run()
}

// Stop ends polling, waits for in-flight records, commits what was marked
// and closes the client. It must follow Start.
func (c *Consumer) Stop() ConsumerStats {
	c.cancel()
	<-c.done

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.client.CommitMarkedOffsets(ctx); err != nil {
		c.logger.Warn("error committing offsets on stop", zap.Error(err))
	}
	c.client.Close()
	return c.Stats()
}

func (c *Consumer) run() {
	defer close(c.done)

	for {
		fetches := c.client.PollFetches(c.ctx)
		if fetches.IsClientClosed() || c.ctx.Err() != nil {
			c.client.AllowRebalance()
			return
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Error(err))
			c.failed.Add(1)
		})

		var wg sync.WaitGroup
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			if len(p.Records) == 0 {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.EachRecord(c.handle)
			}()
		})
		wg.Wait()

		switch err := c.client.CommitMarkedOffsets(c.ctx); {
		case err == nil:
			c.lastCommit.Store(time.Now().UnixNano())
		case c.ctx.Err() == nil:
			c.logger.Error("failed to commit offsets", zap.Error(err))
		}
		c.client.AllowRebalance()
	}
}

// handle passes one record to the handler. A failed record is not marked;
// the next successful record of its partition moves the offset past it, so
// handlers own their retries.
func (c *Consumer) handle(record *kgo.Record) {
	ctx, span := c.tracer.Start(extractTraceContext(c.ctx, record), "process_message",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.source", record.Topic),
			attribute.Int64("partition", int64(record.Partition)),
			attribute.Int64("offset", record.Offset),
		))
	defer span.End()

	if err := c.handler(ctx, newConsumedMessage(record)); err != nil {
		c.logger.Error("message handler failed",
			zap.String("topic", record.Topic),
			zap.Int32("partition", record.Partition),
			zap.Int64("offset", record.Offset),
			zap.Error(err))
		span.RecordError(err)
		c.failed.Add(1)
		return
	}

	c.handled.Add(1)
	c.bytes.Add(int64(len(record.Value)))
	c.client.MarkCommitRecords(record)
}

// ConsumerStats holds consumer counters.
type ConsumerStats struct {
	MessagesRead   int64     `json:"messages_read"`
	BytesRead      int64     `json:"bytes_read"`
	ErrorCount     int64     `json:"error_count"`
	LastCommitTime time.Time `json:"last_commit_time"`
}

func (c *Consumer) Stats() ConsumerStats {
	s := ConsumerStats{
		MessagesRead: c.handled.Load(),
		BytesRead:    c.bytes.Load(),
		ErrorCount:   c.failed.Load(),
	}
	if ns := c.lastCommit.Load(); ns != 0 {
		s.LastCommitTime = time.Unix(0, ns)
	}
	return s
}
