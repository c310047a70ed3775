package scoring

import "time"

// Sub-score names. These are the keys used for configured weights, snapshot
// payloads and recommendation ordering.
const (
	SubCompleteness  = "completeness"
	SubCollaboration = "collaboration"
	SubProductivity  = "productivity"
	SubImpact        = "impact"
	SubInnovation    = "innovation"
	SubTimeline      = "timeline"
	SubQuality       = "quality"
	SubNovelty       = "novelty"
)

// Fixed evaluation order per entity kind. Recommendations follow this order.
var (
	ProjectSubScoreOrder = []string{
		SubCompleteness, SubCollaboration, SubProductivity,
		SubImpact, SubInnovation, SubTimeline,
	}
	ProductSubScoreOrder = []string{
		SubCompleteness, SubImpact, SubQuality, SubNovelty,
	}
)

// Recommendation priorities
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Recommendation is one actionable suggestion derived from a sub-score
type Recommendation struct {
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// ScoreResult is the outcome of one scoring invocation for an entity
type ScoreResult struct {
	EntityID           string             `json:"entity_id"`
	EntityKind         string             `json:"entity_kind"`
	SubScores          map[string]float64 `json:"sub_scores"`
	Order              []string           `json:"-"`
	TotalScore         float64            `json:"total_score"`
	EvaluationCategory string             `json:"evaluation_category"`
	Recommendations    []Recommendation   `json:"recommendations"`
	CalculatedAt       time.Time          `json:"calculated_at"`
}

// SubScore returns a named sub-score, zero when absent
func (r *ScoreResult) SubScore(name string) float64 {
	return r.SubScores[name]
}

// clamp bounds a score to the [lo, hi] range
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
