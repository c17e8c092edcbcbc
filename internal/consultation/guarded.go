package consultation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dorost/consult-engine/pkg/circuitbreaker"
)

// DegradedPenalty is subtracted from the confidence of a fallback output.
const DegradedPenalty = 0.2

// GuardedStage runs an external runner behind a circuit breaker and falls
// back to a local stage when the runner fails or the circuit is open.
type GuardedStage struct {
	runner   Stage
	fallback Stage
	breaker  *circuitbreaker.CircuitBreaker
}

// Guard wraps runner. The stage reports fallback's name.
func Guard(runner, fallback Stage, breaker *circuitbreaker.CircuitBreaker) *GuardedStage {
	return &GuardedStage{runner: runner, fallback: fallback, breaker: breaker}
}

func (g *GuardedStage) Name() string { return g.fallback.Name() }

func (g *GuardedStage) Run(ctx context.Context, in *StageInput) (StageOutput, error) {
	name := g.Name()
	return circuitbreaker.Run(ctx, g.breaker,
		func(ctx context.Context) (StageOutput, error) {
			out, err := g.runner.Run(ctx, in)
			if err != nil {
				return StageOutput{}, err
			}
			out.Stage = name
			out.Confidence = math.Max(0, math.Min(1, out.Confidence))
			return out, nil
		},
		func(cause error) (StageOutput, error) {
			out, err := g.fallback.Run(ctx, in)
			if err != nil {
				return StageOutput{}, fmt.Errorf("stage %s fallback after %v: %w", name, cause, err)
			}
			out.Degraded = true
			out.Confidence = round2(math.Max(0, out.Confidence-DegradedPenalty))
			return out, nil
		})
}

// HTTPRunner delegates a stage to a remote agent service. It posts the stage
// input as JSON to BaseURL/<stage> and expects a StageOutput back.
type HTTPRunner struct {
	stage      string
	url        string
	httpClient *http.Client
}

func NewHTTPRunner(baseURL, stage string, timeout time.Duration) *HTTPRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPRunner{
		stage:      stage,
		url:        strings.TrimRight(baseURL, "/") + "/" + stage,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRunner) Name() string { return r.stage }

type runnerRequest struct {
	Stage       string         `json:"stage"`
	TaskContext string         `json:"task_context"`
	Input       *StageInput    `json:"input"`
	Prior       map[string]any `json:"prior,omitempty"`
}

func (r *HTTPRunner) Run(ctx context.Context, in *StageInput) (StageOutput, error) {
	prior := make(map[string]any, len(in.Prior))
	for k, v := range in.Prior {
		prior[k] = v.Data
	}
	body, err := json.Marshal(runnerRequest{Stage: r.stage, TaskContext: in.TaskContext, Input: in, Prior: prior})
	if err != nil {
		return StageOutput{}, fmt.Errorf("marshal stage input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return StageOutput{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return StageOutput{}, fmt.Errorf("call %s runner: %w", r.stage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return StageOutput{}, fmt.Errorf("%s runner error: %s - %s", r.stage, resp.Status, string(respBody))
	}

	var out StageOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return StageOutput{}, fmt.Errorf("decode %s runner output: %w", r.stage, err)
	}
	return out, nil
}
