package postgres

import (
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestMigratorLoad(t *testing.T) {
	files := fstest.MapFS{
		"002_second.sql": {Data: []byte("CREATE TABLE b (id INT);")},
		"001_first.sql":  {Data: []byte("CREATE TABLE a (id INT);")},
		"README.md":      {Data: []byte("ignored")},
		"notes.sql":      {Data: []byte("no version prefix")},
		"abc_bad.sql":    {Data: []byte("non numeric")},
	}
	migrations, err := NewMigrator(nil, files, nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("loaded %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("order = %d, %d", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "001_first.sql" || !strings.Contains(migrations[0].SQL, "TABLE a") {
		t.Errorf("first = %+v", migrations[0])
	}
}

func TestMigratorLoadDuplicateVersion(t *testing.T) {
	files := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"1_b.sql":   {Data: []byte("SELECT 2;")},
	}
	if _, err := NewMigrator(nil, files, nil).Load(); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil, Migrations(), nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(migrations) < 3 {
		t.Fatalf("embedded migrations = %d", len(migrations))
	}
	want := []string{"escalation_audit", "outbox", "inbox"}
	for i, table := range want {
		if !strings.Contains(migrations[i].SQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("migration %s does not create %s", migrations[i].Name, table)
		}
	}
}

func TestDeadLetterEnvelope(t *testing.T) {
	lastErr := "broker unavailable"
	entry := &OutboxEntry{
		ID:            7,
		AggregateID:   "c-9",
		AggregateType: aggregateConsultation,
		EventType:     "triage.escalated",
		Payload:       json.RawMessage(`{"urgency":"EMERGENCY_911"}`),
		KafkaTopic:    "triage.alerts",
		KafkaKey:      "c-9",
		CreatedAt:     time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
		RetryCount:    5,
		LastError:     &lastErr,
	}
	b, err := deadLetter(entry)
	if err != nil {
		t.Fatal(err)
	}
	var dl DeadLetter
	if err := json.Unmarshal(b, &dl); err != nil {
		t.Fatal(err)
	}
	if dl.OriginalTopic != "triage.alerts" || dl.RetryCount != 5 || dl.LastError != lastErr {
		t.Errorf("envelope = %+v", dl)
	}
	if string(dl.Payload) != `{"urgency":"EMERGENCY_911"}` {
		t.Errorf("payload = %s", dl.Payload)
	}

	entry.LastError = nil
	b, _ = deadLetter(entry)
	if strings.Contains(string(b), "last_error") {
		t.Errorf("empty last_error should be omitted: %s", b)
	}
}

func TestNewOutboxDefaults(t *testing.T) {
	o := NewOutbox(nil, nil, OutboxConfig{}, nil)
	def := DefaultOutboxConfig()
	if o.config.BatchSize != def.BatchSize || o.config.MaxRetries != def.MaxRetries {
		t.Errorf("config = %+v", o.config)
	}
	if o.config.DeadLetterTopic != "consultation.dead_letter" {
		t.Errorf("dead letter topic = %q", o.config.DeadLetterTopic)
	}
	o.Stop()
}
