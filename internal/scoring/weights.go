package scoring

import "math"

// Default weights applied when no active scoring criteria are configured.
// Each set sums to 1.0.
var (
	defaultProjectWeights = map[string]float64{
		SubCompleteness:  0.25,
		SubCollaboration: 0.20,
		SubProductivity:  0.25,
		SubImpact:        0.15,
		SubInnovation:    0.10,
		SubTimeline:      0.05,
	}

	defaultProductWeights = map[string]float64{
		SubCompleteness: 0.30,
		SubImpact:       0.35,
		SubQuality:      0.25,
		SubNovelty:      0.10,
	}
)

// DefaultProjectWeights returns a copy of the documented project weights
func DefaultProjectWeights() map[string]float64 {
	return copyWeights(defaultProjectWeights)
}

// DefaultProductWeights returns a copy of the documented product weights
func DefaultProductWeights() map[string]float64 {
	return copyWeights(defaultProductWeights)
}

func copyWeights(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// WeightedTotal combines named sub-scores into a rounded total in [0,100].
// Configured weights take precedence per key; a missing or out-of-range
// weight falls back to the documented default for that key. This is the
// single weighted-sum implementation shared by project and product scoring.
func WeightedTotal(subScores, configured, defaults map[string]float64) float64 {
	total := 0.0
	for name, score := range subScores {
		weight, ok := configured[name]
		if !ok || weight <= 0 || weight > 1 {
			weight = defaults[name]
		}
		total += clamp(score, 0, 100) * weight
	}
	return clamp(math.Round(total), 0, 100)
}
