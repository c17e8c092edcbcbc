package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dorost/consult-engine/internal/api/handlers"
	"github.com/dorost/consult-engine/internal/confidence"
	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/internal/observability/metrics"
	"github.com/dorost/consult-engine/internal/patterns"
	"github.com/dorost/consult-engine/internal/routing"
)

const testKey = "test-key"

func newTestServer(t *testing.T, checks ...handlers.Check) *httptest.Server {
	t.Helper()
	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("load knowledge: %v", err)
	}
	matcher, err := patterns.NewMatcher(kb, nil, 0)
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	router := routing.NewRouter(kb, nil)
	m := metrics.New(prometheus.NewRegistry())
	svc, err := consultation.NewService(kb,
		consultation.Deps{Router: router, Matcher: matcher, Policy: confidence.DefaultPolicy()},
		nil,
		consultation.WithStore(consultation.NewStore(0, nil)),
		consultation.WithMetrics(m))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	h := NewRouter(Handlers{
		Engine:       handlers.NewEngineHandler(kb, router, matcher, confidence.DefaultPolicy(), m, nil),
		Consultation: handlers.NewConsultationHandler(svc, nil),
		Health:       handlers.NewHealthHandler(ServiceName, "test", nil, checks...),
		Metrics:      m.Handler(),
	}, map[string]string{testKey: "tests"}, nil)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-API-Key", testKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var raw any
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if m, ok := raw.(map[string]any); ok {
			out = m
		} else {
			out = map[string]any{"items": raw}
		}
	}
	return resp.StatusCode, out
}

func TestTriageEndpoint(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/api/v1/triage", `{"symptoms":["crushing chest pain","pain radiating to arm"]}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["max_urgency"] != "EMERGENCY_911" || body["terminal"] != true {
		t.Errorf("body = %v", body)
	}

	code, _ = do(t, srv, http.MethodPost, "/api/v1/triage", `{"symptoms":[]}`)
	if code != http.StatusBadRequest {
		t.Errorf("empty symptoms status = %d", code)
	}
	code, _ = do(t, srv, http.MethodPost, "/api/v1/triage", `{not json`)
	if code != http.StatusBadRequest {
		t.Errorf("bad json status = %d", code)
	}
}

func TestRouteEndpoint(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/api/v1/route",
		`{"symptoms":["fatigue","weight_gain","cold_intolerance","hair_loss"],"body_system":"hormonal"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	recs, _ := body["recommendations"].([]any)
	if len(recs) == 0 {
		t.Fatalf("no recommendations: %v", body)
	}
	top := recs[0].(map[string]any)
	if top["specialty"] != "endocrinologist" || top["priority"] != "primary" {
		t.Errorf("top = %v", top)
	}

	code, body = do(t, srv, http.MethodPost, "/api/v1/route", `{"symptoms":["chest pain"],"body_system":"heart"}`)
	if code != http.StatusOK || body["emergency"] != true {
		t.Errorf("status %d, body %v", code, body)
	}
	if _, ok := body["recommendations"]; ok {
		t.Error("an emergency must not rank specialists")
	}
}

func TestPatternsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/api/v1/patterns",
		`{"profile":{"sleep_hours":4,"mood_score":2,"exercise_mins_per_week":0}}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	matches, _ := body["matches"].([]any)
	if len(matches) == 0 || len(matches) > 5 {
		t.Fatalf("matches = %d", len(matches))
	}
	if id := matches[0].(map[string]any)["pattern_id"]; id != float64(20) {
		t.Errorf("top pattern = %v, want 20", id)
	}
	if _, ok := body["severity"]; !ok {
		t.Error("missing severity")
	}

	code, _ = do(t, srv, http.MethodPost, "/api/v1/patterns", `{}`)
	if code != http.StatusBadRequest {
		t.Errorf("missing profile status = %d", code)
	}

	code, body = do(t, srv, http.MethodGet, "/api/v1/patterns", "")
	if code != http.StatusOK || len(body["items"].([]any)) == 0 {
		t.Errorf("list patterns: %d %v", code, body)
	}
}

func TestConfidenceEndpoint(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/api/v1/confidence",
		`{"symptom_clarity":0.9,"pattern_match_strength":0.9,"red_flags_present":true,"duration_weeks":4,
		  "recommendation":{"symptoms":["fatigue"],"red_flags_present":true}}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	a := body["assessment"].(map[string]any)
	if a["score"] != 0.2 || a["should_escalate"] != true {
		t.Errorf("assessment = %v", a)
	}
	if a["escalation_reason"] != confidence.ReasonRedFlags {
		t.Errorf("reason = %v", a["escalation_reason"])
	}
	rec := body["recommendation"].(map[string]any)
	if rec["confidence_score"] != 0.3 {
		t.Errorf("recommendation = %v", rec)
	}
}

func TestSpecialtiesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodGet, "/api/v1/specialties", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if specs, _ := body["specialties"].([]any); len(specs) == 0 {
		t.Errorf("body = %v", body)
	}
}

func TestConsultationLifecycle(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/api/v1/consultations", `{"query":"crushing chest pain radiating to arm"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "EMERGENCY" {
		t.Fatalf("body = %v", body)
	}
	id, _ := body["id"].(string)

	code, body = do(t, srv, http.MethodGet, "/api/v1/consultations/"+id, "")
	if code != http.StatusOK || body["id"] != id {
		t.Errorf("get: %d %v", code, body)
	}

	code, _ = do(t, srv, http.MethodGet, "/api/v1/consultations/does-not-exist", "")
	if code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", code)
	}

	if code, _ = do(t, srv, http.MethodDelete, "/api/v1/consultations/"+id, ""); code != http.StatusNoContent {
		t.Errorf("delete status = %d", code)
	}
	if code, _ = do(t, srv, http.MethodGet, "/api/v1/consultations/"+id, ""); code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", code)
	}
	if code, _ = do(t, srv, http.MethodDelete, "/api/v1/consultations/"+id, ""); code != http.StatusNotFound {
		t.Errorf("second delete status = %d", code)
	}

	code, _ = do(t, srv, http.MethodPost, "/api/v1/consultations", `{}`)
	if code != http.StatusBadRequest {
		t.Errorf("empty request status = %d", code)
	}
	code, _ = do(t, srv, http.MethodPost, "/api/v1/consultations", `{"query":"x","patient_complexity":3}`)
	if code != http.StatusBadRequest {
		t.Errorf("invalid request status = %d", code)
	}
}

func TestCompleteConsultation(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/api/v1/consultations",
		`{"query":"always tired and cold","symptoms":["fatigue","weight gain","cold intolerance","hair loss"],"body_system":"Hormonal","duration_weeks":4}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "COMPLETE" {
		t.Fatalf("status = %v", body["status"])
	}
	if stages, _ := body["stages"].([]any); len(stages) != 6 {
		t.Errorf("stages = %d", len(stages))
	}
	if body["medical_disclaimer"] == "" {
		t.Error("missing disclaimer")
	}
}

func TestAuthAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/triage", "application/json", strings.NewReader(`{"symptoms":["x"]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d", resp.StatusCode)
	}

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}

func TestReadyFailsOnCheck(t *testing.T) {
	srv := newTestServer(t, handlers.Check{Name: "database", Fn: func(context.Context) error {
		return errors.New("connection refused")
	}})

	code, body := do(t, srv, http.MethodGet, "/ready", "")
	if code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Errorf("ready: %d %v", code, body)
	}
}
