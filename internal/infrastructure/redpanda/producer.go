// Package redpanda carries consultation traffic over Kafka-compatible
// brokers with franz-go: triage requests in, results and alerts out.
package redpanda

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProducerConfig holds configuration for the Redpanda producer
type ProducerConfig struct {
	Brokers       []string
	BatchMaxBytes int32
	// LingerMS is the time to wait before sending a batch
	LingerMS           int64
	MaxBufferedRecords int
	// Compression is one of none, lz4, snappy, gzip, zstd.
	Compression string
	// RequiredAcks is -1 (all in-sync replicas), 0 or 1.
	RequiredAcks   int16
	MaxRetries     int
	RetryBackoffMS int64
	// OnProduced, when set, is called once per acknowledged record.
	OnProduced func(topic string)
}

// DefaultProducerConfig returns defaults for consultation traffic. Alerts
// must not be lost, so every record waits for all in-sync replicas.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:            []string{"localhost:9092"},
		BatchMaxBytes:      1 << 20,
		LingerMS:           5,
		MaxBufferedRecords: 10_000,
		Compression:        "lz4",
		RequiredAcks:       -1,
		MaxRetries:         3,
		RetryBackoffMS:     100,
	}
}

func (cfg ProducerConfig) opts() ([]kgo.Opt, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("producer needs at least one broker")
	}
	backoff := time.Duration(cfg.RetryBackoffMS) * time.Millisecond
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchMaxBytes(cfg.BatchMaxBytes),
		kgo.ProducerLinger(time.Duration(cfg.LingerMS) * time.Millisecond),
		kgo.MaxBufferedRecords(cfg.MaxBufferedRecords),
		kgo.RecordRetries(cfg.MaxRetries),
		kgo.RetryBackoffFn(func(attempt int) time.Duration {
			return backoff * time.Duration(attempt+1)
		}),
	}

	switch cfg.RequiredAcks {
	case -1:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	case 0:
		opts = append(opts, kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite())
	case 1:
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	default:
		return nil, fmt.Errorf("unsupported required acks %d", cfg.RequiredAcks)
	}

	var codec kgo.CompressionCodec
	switch cfg.Compression {
	case "", "none":
		codec = kgo.NoCompression()
	case "lz4":
		codec = kgo.Lz4Compression()
	case "snappy":
		codec = kgo.SnappyCompression()
	case "gzip":
		codec = kgo.GzipCompression()
	case "zstd":
		codec = kgo.ZstdCompression()
	default:
		return nil, fmt.Errorf("unsupported compression %q", cfg.Compression)
	}
	return append(opts, kgo.ProducerBatchCompression(codec)), nil
}

// Producer sends records and waits for their acknowledgement.
type Producer struct {
	client *kgo.Client
	config ProducerConfig
	logger *zap.Logger
	tracer trace.Tracer

	sent   atomic.Int64
	bytes  atomic.Int64
	failed atomic.Int64
}

func NewProducer(cfg ProducerConfig, logger *zap.Logger) (*Producer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := cfg.opts()
	if err != nil {
		return nil, err
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &Producer{
		client: client,
		config: cfg,
		logger: logger,
		tracer: otel.Tracer("redpanda-producer"),
	}, nil
}

// Publish sends one record and blocks until it is acknowledged. The trace
// context of ctx travels in the record headers.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	return p.PublishWithHeaders(ctx, topic, key, value, nil)
}

// PublishWithHeaders is Publish with extra record headers.
func (p *Producer) PublishWithHeaders(ctx context.Context, topic, key string, value []byte, headers map[string]string) error {
	ctx, span := p.tracer.Start(ctx, "produce_message",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.kafka.message_key", key),
			attribute.Int("value_size", len(value)),
		))
	defer span.End()

	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: value}
	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	injectTraceHeaders(ctx, record)

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.failed.Add(1)
		p.logger.Error("failed to produce message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	p.sent.Add(1)
	p.bytes.Add(int64(len(value)))
	if p.config.OnProduced != nil {
		p.config.OnProduced(topic)
	}
	p.logger.Debug("message produced",
		zap.String("topic", record.Topic),
		zap.Int32("partition", record.Partition),
		zap.Int64("offset", record.Offset))
	return nil
}

// Ping checks broker connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records for up to ten seconds and closes the client.
func (p *Producer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("error flushing on close", zap.Error(err))
	}
	p.client.Close()
	p.logger.Info("producer closed",
		zap.Int64("sent", p.sent.Load()),
		zap.Int64("failed", p.failed.Load()))
	return nil
}

// ProducerStats holds producer counters.
type ProducerStats struct {
	MessagesSent int64 `json:"messages_sent"`
	BytesSent    int64 `json:"bytes_sent"`
	ErrorCount   int64 `json:"error_count"`
}

func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesSent: p.sent.Load(),
		BytesSent:    p.bytes.Load(),
		ErrorCount:   p.failed.Load(),
	}
}
