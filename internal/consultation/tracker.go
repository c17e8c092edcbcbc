package consultation

import (
	"math"
	"time"
)

// StageMetric is one recorded stage execution.
type StageMetric struct {
	Stage      string        `json:"stage"`
	Duration   time.Duration `json:"duration_ns"`
	Confidence float64       `json:"confidence"`
	Success    bool          `json:"success"`
	Degraded   bool          `json:"degraded,omitempty"`
	Error      string        `json:"error,omitempty"`
	At         time.Time     `json:"at"`
}

// PipelineStats aggregates the metrics of one consultation.
type PipelineStats struct {
	Executed          int           `json:"stages_executed"`
	Succeeded         int           `json:"stages_succeeded"`
	Failed            int           `json:"stages_failed"`
	Degraded          int           `json:"stages_degraded"`
	SuccessRate       float64       `json:"success_rate"`
	AverageConfidence float64       `json:"average_confidence"`
	TotalTime         time.Duration `json:"total_time_ns"`
	AverageTime       time.Duration `json:"average_time_ns"`
}

// StageStats aggregates the executions of one stage.
type StageStats struct {
	Stage         string        `json:"stage"`
	Executions    int           `json:"executions"`
	AverageTime   time.Duration `json:"average_time_ns"`
	AvgConfidence float64       `json:"average_confidence"`
	SuccessRate   float64       `json:"success_rate"`
}

// Tracker records stage executions for a single consultation.
type Tracker struct {
	metrics []StageMetric
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Record appends a finished stage run. err marks it failed.
func (t *Tracker) Record(out StageOutput, d time.Duration, err error) StageMetric {
	m := StageMetric{
		Stage:      out.Stage,
		Duration:   d,
		Confidence: out.Confidence,
		Success:    err == nil,
		Degraded:   out.Degraded,
		At:         t.now().UTC(),
	}
	if err != nil {
		m.Error = err.Error()
		m.Confidence = 0
	}
	t.metrics = append(t.metrics, m)
	return m
}

// Metrics returns a copy of everything recorded.
func (t *Tracker) Metrics() []StageMetric {
	return append([]StageMetric(nil), t.metrics...)
}

// Stats returns the pipeline aggregate. Average confidence only counts
// successful stages; success rate is a percentage.
func (t *Tracker) Stats() PipelineStats {
	var s PipelineStats
	if len(t.metrics) == 0 {
		return s
	}
	var confSum float64
	for _, m := range t.metrics {
		s.Executed++
		s.TotalTime += m.Duration
		if m.Degraded {
			s.Degraded++
		}
		if !m.Success {
			s.Failed++
			continue
		}
		s.Succeeded++
		confSum += m.Confidence
	}
	s.SuccessRate = float64(s.Succeeded) / float64(s.Executed) * 100
	if s.Succeeded > 0 {
		s.AverageConfidence = round2(confSum / float64(s.Succeeded))
	}
	s.AverageTime = s.TotalTime / time.Duration(s.Executed)
	return s
}

// StageStats returns the aggregate for one stage, or false when it never ran.
func (t *Tracker) StageStats(stage string) (StageStats, bool) {
	st := StageStats{Stage: stage}
	var total time.Duration
	var conf float64
	var ok int
	for _, m := range t.metrics {
		if m.Stage != stage {
			continue
		}
		st.Executions++
		total += m.Duration
		conf += m.Confidence
		if m.Success {
			ok++
		}
	}
	if st.Executions == 0 {
		return st, false
	}
	n := float64(st.Executions)
	st.AverageTime = total / time.Duration(st.Executions)
	st.AvgConfidence = round2(conf / n)
	st.SuccessRate = float64(ok) / n * 100
	return st, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
