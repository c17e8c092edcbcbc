package redpanda

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

const (
	TopicConsultationRequests = "consultation.requests"
	TopicConsultationResults  = "consultation.results"
	TopicTriageAlerts         = "triage.alerts"
	TopicDeadLetter           = "consultation.dead_letter"
)

// TopicConfig describes one topic to create.
type TopicConfig struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
	Retention         time.Duration
}

// Configs returns the broker-side topic settings.
func (t TopicConfig) Configs() map[string]*string {
	return map[string]*string{
		"retention.ms":     kadm.StringPtr(strconv.FormatInt(t.Retention.Milliseconds(), 10)),
		"cleanup.policy":   kadm.StringPtr("delete"),
		"compression.type": kadm.StringPtr("lz4"),
	}
}

// DefaultTopicConfigs returns the topic layout. Requests and results carry
// patient text and are kept for a day; alerts hold only flag ids and are
// kept for thirty days.
func DefaultTopicConfigs() []TopicConfig {
	const day = 24 * time.Hour
	return []TopicConfig{
		{Name: TopicConsultationRequests, Partitions: 6, ReplicationFactor: 1, Retention: day},
		{Name: TopicConsultationResults, Partitions: 6, ReplicationFactor: 1, Retention: day},
		{Name: TopicTriageAlerts, Partitions: 3, ReplicationFactor: 1, Retention: 30 * day},
		{Name: TopicDeadLetter, Partitions: 1, ReplicationFactor: 1, Retention: 7 * day},
	}
}

// Admin wraps kadm for topic setup and lag inspection.
type Admin struct {
	client *kadm.Client
	logger *zap.Logger
}

func NewAdmin(brokers []string, logger *zap.Logger) (*Admin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(brokers) == 0 {
		return nil, errors.New("admin needs at least one broker")
	}
	cl, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &Admin{client: kadm.NewClient(cl), logger: logger}, nil
}

// EnsureTopics creates every consultation topic that does not exist yet.
func (a *Admin) EnsureTopics(ctx context.Context) error {
	for _, t := range DefaultTopicConfigs() {
		resp, err := a.client.CreateTopic(ctx, t.Partitions, t.ReplicationFactor, t.Configs(), t.Name)
		switch {
		case err != nil:
			return fmt.Errorf("create topic %s: %w", t.Name, err)
		case errors.Is(resp.Err, kerr.TopicAlreadyExists):
			a.logger.Debug("topic exists", zap.String("topic", t.Name))
		case resp.Err != nil:
			return fmt.Errorf("create topic %s: %w", t.Name, resp.Err)
		default:
			a.logger.Info("topic created",
				zap.String("topic", t.Name),
				zap.Int32("partitions", t.Partitions))
		}
	}
	return nil
}

// ListTopics returns topic names in sorted order.
func (a *Admin) ListTopics(ctx context.Context) ([]string, error) {
	topics, err := a.client.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	names := topics.Names()
	sort.Strings(names)
	return names, nil
}

// PartitionLag is the lag of one partition for a consumer group.
type PartitionLag struct {
	Topic     string `json:"topic"`
	Partition int32  `json:"partition"`
	Lag       int64  `json:"lag"`
}

// GroupLag returns the lag of group per partition, sorted by topic and
// partition.
func (a *Admin) GroupLag(ctx context.Context, group string) ([]PartitionLag, error) {
	described, err := a.client.Lag(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("group lag: %w", err)
	}
	var out []PartitionLag
	described.Each(func(l kadm.DescribedGroupLag) {
		for _, ml := range l.Lag.Sorted() {
			out = append(out, PartitionLag{Topic: ml.Topic, Partition: ml.Partition, Lag: ml.Lag})
		}
	})
	return out, nil
}

func (a *Admin) Close() {
	a.client.Close()
}
