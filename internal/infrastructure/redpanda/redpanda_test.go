package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/internal/knowledge"
)

func TestTraceHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "produce")
	defer span.End()

	record := &kgo.Record{Headers: []kgo.RecordHeader{{Key: "content-type", Value: []byte("application/json")}}}
	injectTraceHeaders(ctx, record)

	if got := (recordCarrier{record: record}).Get("traceparent"); got == "" {
		t.Fatal("traceparent header not written")
	}
	if len(record.Headers) != 2 {
		t.Errorf("headers = %v", record.Headers)
	}

	extracted := trace.SpanContextFromContext(extractTraceContext(context.Background(), record))
	if extracted.TraceID() != span.SpanContext().TraceID() {
		t.Errorf("trace id = %s, want %s", extracted.TraceID(), span.SpanContext().TraceID())
	}
	if !extracted.IsRemote() {
		t.Error("extracted span context should be remote")
	}
}

func TestRecordCarrierSetReplaces(t *testing.T) {
	record := &kgo.Record{}
	c := recordCarrier{record: record}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	if len(record.Headers) != 1 || c.Get("traceparent") != "b" {
		t.Errorf("headers = %v", record.Headers)
	}
	if keys := c.Keys(); len(keys) != 1 || keys[0] != "traceparent" {
		t.Errorf("keys = %v", keys)
	}
}

type fakePublisher struct {
	topic, key string
	value      []byte
	err        error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, value []byte) error {
	f.topic, f.key, f.value = topic, key, value
	return f.err
}

func TestAlertPublisher(t *testing.T) {
	pub := &fakePublisher{}
	a := NewAlertPublisher(pub)

	e := consultation.Escalation{
		ConsultationID: "c-1",
		Status:         consultation.StatusEmergency,
		Urgency:        knowledge.UrgencyEmergency911,
		FlagIDs:        []string{"cardiac_chest_pain"},
		Reasons:        []string{"Red flag symptoms require immediate medical attention"},
		Confidence:     0.2,
		OccurredAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := a.RecordEscalation(context.Background(), e); err != nil {
		t.Fatalf("RecordEscalation: %v", err)
	}
	if pub.topic != TopicTriageAlerts || pub.key != "c-1" {
		t.Errorf("published to %s/%s", pub.topic, pub.key)
	}

	var got map[string]any
	if err := json.Unmarshal(pub.value, &got); err != nil {
		t.Fatal(err)
	}
	if got["event_type"] != consultation.AlertEventType || got["urgency"] != "EMERGENCY_911" {
		t.Errorf("payload = %v", got)
	}
	if got["event_id"] == "" {
		t.Error("missing event id")
	}

	pub.err = errors.New("broker down")
	if err := a.RecordEscalation(context.Background(), e); err == nil {
		t.Error("expected publish error")
	}
}

func TestDefaultTopicConfigs(t *testing.T) {
	want := map[string]bool{
		TopicConsultationRequests: true,
		TopicConsultationResults:  true,
		TopicTriageAlerts:         true,
		TopicDeadLetter:           true,
	}
	for _, cfg := range DefaultTopicConfigs() {
		if !want[cfg.Name] {
			t.Errorf("unexpected topic %s", cfg.Name)
		}
		delete(want, cfg.Name)
		if cfg.Partitions < 1 {
			t.Errorf("%s has %d partitions", cfg.Name, cfg.Partitions)
		}
	}
	if len(want) != 0 {
		t.Errorf("missing topics %v", want)
	}
}

func TestProducerOpts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProducerConfig)
		wantErr bool
	}{
		{"defaults", func(*ProducerConfig) {}, false},
		{"no compression", func(c *ProducerConfig) { c.Compression = "" }, false},
		{"zstd leader ack", func(c *ProducerConfig) { c.Compression = "zstd"; c.RequiredAcks = 1 }, false},
		{"unknown compression", func(c *ProducerConfig) { c.Compression = "brotli" }, true},
		{"bad acks", func(c *ProducerConfig) { c.RequiredAcks = 2 }, true},
		{"no brokers", func(c *ProducerConfig) { c.Brokers = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultProducerConfig()
			tt.mutate(&cfg)
			opts, err := cfg.opts()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(opts) == 0 {
				t.Error("no options built")
			}
		})
	}
}

func TestConsumerOpts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConsumerConfig)
		wantErr bool
	}{
		{"defaults", func(*ConsumerConfig) {}, false},
		{"latest", func(c *ConsumerConfig) { c.StartOffset = "latest" }, false},
		{"unknown offset", func(c *ConsumerConfig) { c.StartOffset = "middle" }, true},
		{"no group", func(c *ConsumerConfig) { c.GroupID = "" }, true},
		{"no topics", func(c *ConsumerConfig) { c.Topics = nil }, true},
		{"no brokers", func(c *ConsumerConfig) { c.Brokers = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConsumerConfig()
			tt.mutate(&cfg)
			if _, err := cfg.opts(); (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewConsumerNeedsHandler(t *testing.T) {
	if _, err := NewConsumer(DefaultConsumerConfig(), nil, nil); err == nil {
		t.Error("expected error for nil handler")
	}
}

func TestConsumedMessageCopiesHeaders(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	msg := newConsumedMessage(&kgo.Record{
		Topic:     TopicConsultationRequests,
		Partition: 2,
		Offset:    41,
		Key:       []byte("req-1"),
		Value:     []byte(`{}`),
		Headers:   []kgo.RecordHeader{{Key: "traceparent", Value: []byte("00-abc")}},
		Timestamp: ts,
	})
	if msg.Partition != 2 || msg.Offset != 41 || string(msg.Key) != "req-1" || !msg.Timestamp.Equal(ts) {
		t.Errorf("msg = %+v", msg)
	}
	if msg.Headers["traceparent"] != "00-abc" {
		t.Errorf("headers = %v", msg.Headers)
	}
}

func TestTopicConfigSettings(t *testing.T) {
	for _, cfg := range DefaultTopicConfigs() {
		if cfg.Name != TopicTriageAlerts {
			continue
		}
		got := cfg.Configs()
		if r := got["retention.ms"]; r == nil || *r != "2592000000" {
			t.Errorf("alerts retention = %v", r)
		}
		if p := got["cleanup.policy"]; p == nil || *p != "delete" {
			t.Errorf("cleanup policy = %v", p)
		}
		return
	}
	t.Fatal("alerts topic missing")
}

func TestNewAdminNeedsBrokers(t *testing.T) {
	if _, err := NewAdmin(nil, nil); err == nil {
		t.Error("expected error without brokers")
	}
}
