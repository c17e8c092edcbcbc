// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds settings shared by every binary.
type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	KafkaBrokers        string        `mapstructure:"KAFKA_BROKERS"`
	APIKeyList          string        `mapstructure:"API_KEYS"`
	OTLPEndpoint        string        `mapstructure:"OTLP_ENDPOINT"`
	TraceSampleRate     float64       `mapstructure:"TRACE_SAMPLE_RATE"`
	MaxPatternMatches   int           `mapstructure:"MAX_PATTERN_MATCHES"`
	ConfidenceThreshold float64       `mapstructure:"CONFIDENCE_THRESHOLD"`
	WorkerCount         int           `mapstructure:"WORKER_COUNT"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	AgentBaseURL        string        `mapstructure:"AGENT_BASE_URL"`
	AgentTimeout        time.Duration `mapstructure:"AGENT_TIMEOUT"`
	ConsumerGroup       string        `mapstructure:"CONSUMER_GROUP"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "KAFKA_BROKERS", "API_KEYS",
	"OTLP_ENDPOINT", "TRACE_SAMPLE_RATE", "MAX_PATTERN_MATCHES", "CONFIDENCE_THRESHOLD",
	"WORKER_COUNT", "SESSION_TTL", "AGENT_BASE_URL", "AGENT_TIMEOUT", "CONSUMER_GROUP",
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("API_KEYS", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("TRACE_SAMPLE_RATE", 1.0)
	v.SetDefault("MAX_PATTERN_MATCHES", 5)
	v.SetDefault("CONFIDENCE_THRESHOLD", 0.60)
	v.SetDefault("WORKER_COUNT", 16)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("AGENT_BASE_URL", "")
	v.SetDefault("AGENT_TIMEOUT", "10s")
	v.SetDefault("CONSUMER_GROUP", "triage-worker")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		errs = append(errs, fmt.Errorf("TRACE_SAMPLE_RATE must be in [0,1], got %v", c.TraceSampleRate))
	}
	if c.MaxPatternMatches < 1 {
		errs = append(errs, fmt.Errorf("MAX_PATTERN_MATCHES must be positive, got %d", c.MaxPatternMatches))
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("CONFIDENCE_THRESHOLD must be in [0,1], got %v", c.ConfidenceThreshold))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if _, err := parseAPIKeys(c.APIKeyList); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Brokers splits KAFKA_BROKERS. Empty means Kafka is disabled.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// APIKeys maps each configured key to its client id.
func (c *Config) APIKeys() map[string]string {
	m, _ := parseAPIKeys(c.APIKeyList)
	return m
}

func parseAPIKeys(list string) (map[string]string, error) {
	m := make(map[string]string)
	for _, pair := range strings.Split(list, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, client, ok := strings.Cut(pair, ":")
		if !ok || key == "" || client == "" {
			return nil, fmt.Errorf("API_KEYS entry %q must be key:client", pair)
		}
		m[key] = client
	}
	return m, nil
}
