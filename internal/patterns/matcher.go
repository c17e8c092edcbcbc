package patterns

import (
	"fmt"
	"sort"

	"github.com/dorost/consult-engine/internal/knowledge"
)

// DefaultLimit is the number of matches returned when no limit is configured.
const DefaultLimit = 5

// MatchResult is a qualifying pattern scored against one profile.
type MatchResult struct {
	PatternID         int                      `json:"pattern_id"`
	PatternName       string                   `json:"pattern_name"`
	MatchScore        float64                  `json:"match_score"`
	Confidence        float64                  `json:"confidence"`
	IndicatorsMatched int                      `json:"indicators_matched"`
	TotalIndicators   int                      `json:"total_indicators"`
	MatchedIndicators []knowledge.Indicator    `json:"matched_indicators"`
	MatchedFactors    []knowledge.Factor       `json:"matched_factors,omitempty"`
	Explanation       string                   `json:"explanation"`
	Recommendation    knowledge.Recommendation `json:"recommendation"`
	Timeline          string                   `json:"timeline"`
}

// Matcher ranks health patterns for a profile. It is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	patterns []knowledge.HealthPattern
	registry *Registry
	limit    int
}

// NewMatcher fails if any pattern in kb references an indicator or factor
// without a predicate in registry. A nil registry uses DefaultRegistry and a
// non-positive limit uses DefaultLimit.
func NewMatcher(kb *knowledge.Base, registry *Registry, limit int) (*Matcher, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	patterns := kb.Patterns()
	if err := registry.Check(patterns); err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}
	return &Matcher{patterns: patterns, registry: registry, limit: limit}, nil
}

// Limit returns the maximum number of results Match returns.
func (m *Matcher) Limit() int {
	return m.limit
}

// Match scores every pattern against p. Each satisfied indicator adds 1 and
// each satisfied severity factor adds its weight. Patterns with no satisfied
// indicator are dropped. Results are sorted by score, ties keeping table
// order, and truncated to the limit.
func (m *Matcher) Match(p *Profile) []MatchResult {
	results := make([]MatchResult, 0, len(m.patterns))

	for _, hp := range m.patterns {
		var (
			score      float64
			indicators []knowledge.Indicator
			factors    []knowledge.Factor
		)
		for _, ind := range hp.Indicators {
			if m.registry.Indicator(ind, p) {
				score++
				indicators = append(indicators, ind)
			}
		}
		if len(indicators) == 0 {
			continue
		}
		for _, wf := range hp.SeverityFactors {
			if m.registry.Factor(wf.Factor, p) {
				score += wf.Weight
				factors = append(factors, wf.Factor)
			}
		}

		results = append(results, MatchResult{
			PatternID:         hp.ID,
			PatternName:       hp.Name,
			MatchScore:        score,
			Confidence:        float64(len(indicators)) / float64(len(hp.Indicators)),
			IndicatorsMatched: len(indicators),
			TotalIndicators:   len(hp.Indicators),
			MatchedIndicators: indicators,
			MatchedFactors:    factors,
			Explanation:       hp.Explanation,
			Recommendation:    hp.Recommendation,
			Timeline:          hp.Timeline,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	if len(results) > m.limit {
		results = results[:m.limit]
	}
	return results
}

// Strength is the confidence of the best match, or 0 with no match. It feeds
// the pattern-match input of confidence scoring.
func Strength(results []MatchResult) float64 {
	var best float64
	for _, r := range results {
		if r.Confidence > best {
			best = r.Confidence
		}
	}
	return best
}
