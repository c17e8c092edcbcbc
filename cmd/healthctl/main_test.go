package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("AGENT_BASE_URL", "")

	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTriageCommand(t *testing.T) {
	out, err := run(t, "", "triage", "crushing chest pain", "pain radiating to arm")
	if err == nil {
		t.Fatal("terminal red flag should exit with an error")
	}
	if !strings.Contains(out, `"max_urgency": "EMERGENCY_911"`) {
		t.Errorf("output = %s", out)
	}

	out, err = run(t, "", "triage", "mild itchy skin")
	if err != nil {
		t.Fatalf("triage: %v", err)
	}
	if !strings.Contains(out, `"terminal": false`) {
		t.Errorf("output = %s", out)
	}
}

func TestRouteCommand(t *testing.T) {
	out, err := run(t, "", "route", "--system", "hormonal", "fatigue", "weight_gain", "cold_intolerance", "hair_loss")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	var res struct {
		Recommendations []struct {
			Specialty string `json:"specialty"`
			Priority  string `json:"priority"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Recommendations) == 0 || res.Recommendations[0].Specialty != "endocrinologist" {
		t.Errorf("recommendations = %+v", res.Recommendations)
	}
}

func TestMatchCommandFromStdin(t *testing.T) {
	out, err := run(t, `{"sleep_hours":4,"mood_score":2,"exercise_mins_per_week":0}`, "match")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	var res struct {
		Matches []struct {
			PatternID int `json:"pattern_id"`
		} `json:"matches"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) == 0 || res.Matches[0].PatternID != 20 {
		t.Errorf("matches = %+v", res.Matches)
	}

	if _, err := run(t, `{"sleep_hour":4}`, "match"); err == nil {
		t.Error("unknown profile fields should be rejected")
	}
}

func TestConfidenceCommand(t *testing.T) {
	out, err := run(t, "", "confidence", "--clarity", "0.9", "--strength", "0.9", "--red-flags")
	if err != nil {
		t.Fatalf("confidence: %v", err)
	}
	var res struct {
		Assessment struct {
			Score          float64 `json:"score"`
			ShouldEscalate bool    `json:"should_escalate"`
		} `json:"assessment"`
		Guidance string `json:"guidance"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Assessment.Score != 0.2 || !res.Assessment.ShouldEscalate || res.Guidance == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestConsultCommand(t *testing.T) {
	out, err := run(t, "", "consult", "-q", "always tired and cold", "fatigue", "weight_gain", "cold_intolerance")
	if err != nil {
		t.Fatalf("consult: %v", err)
	}
	if !strings.Contains(out, `"status": "COMPLETE"`) || !strings.Contains(out, `"medical_disclaimer"`) {
		t.Errorf("output = %s", out)
	}

	if _, err := run(t, "", "consult"); err == nil {
		t.Error("empty consultation should fail")
	}
}

func TestListCommands(t *testing.T) {
	out, err := run(t, "", "patterns", "--names")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, " 20  ") {
		t.Errorf("pattern 20 missing from %q", out)
	}

	out, err = run(t, "", "specialties")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "endocrinologist") || !strings.Contains(out, "body_systems") {
		t.Errorf("output = %s", out)
	}
}

func TestOpsCommandsNeedConfiguration(t *testing.T) {
	if _, err := run(t, "", "migrate", "up"); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("migrate up err = %v", err)
	}
	if _, err := run(t, "", "escalations"); err == nil {
		t.Error("escalations without a database should fail")
	}
	if _, err := run(t, "", "outbox", "stats"); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("outbox stats err = %v", err)
	}
	if _, err := run(t, "", "topics", "list"); err == nil || !strings.Contains(err.Error(), "KAFKA_BROKERS") {
		t.Errorf("topics list err = %v", err)
	}
}
