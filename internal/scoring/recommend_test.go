package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctei-manager/ctei-backend/internal/database"
)

func TestGenerateRecommendationsThreshold(t *testing.T) {
	subScores := map[string]float64{
		SubCompleteness:  60, // at the threshold, no recommendation
		SubCollaboration: 59,
		SubProductivity:  95,
		SubImpact:        70,
		SubInnovation:    80,
		SubTimeline:      100,
	}

	recs := GenerateRecommendations(subScores, ProjectSubScoreOrder, 75, database.EntityProject)

	require.Len(t, recs, 1)
	assert.Equal(t, SubCollaboration, recs[0].Category)
	assert.Equal(t, PriorityLow, recs[0].Priority)
	assert.NotEmpty(t, recs[0].Actions)
}

func TestGenerateRecommendationsFollowEvaluationOrder(t *testing.T) {
	subScores := map[string]float64{
		SubCompleteness:  20,
		SubCollaboration: 90,
		SubProductivity:  40,
		SubImpact:        90,
		SubInnovation:    90,
		SubTimeline:      10,
	}

	recs := GenerateRecommendations(subScores, ProjectSubScoreOrder, 55, database.EntityProject)

	require.Len(t, recs, 3)
	assert.Equal(t, SubCompleteness, recs[0].Category)
	assert.Equal(t, SubProductivity, recs[1].Category)
	assert.Equal(t, SubTimeline, recs[2].Category)
}

func TestRecommendationPriorityBands(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0, PriorityHigh},
		{29.9, PriorityHigh},
		{30, PriorityMedium},
		{44.9, PriorityMedium},
		{45, PriorityLow},
		{59, PriorityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, recommendationPriority(tt.score), "score %.1f", tt.score)
	}
}

func TestGenerateRecommendationsPositiveAcknowledgment(t *testing.T) {
	subScores := map[string]float64{
		SubCompleteness: 90,
		SubImpact:       90,
		SubQuality:      85,
		SubNovelty:      80,
	}

	recs := GenerateRecommendations(subScores, ProductSubScoreOrder, 88, database.EntityProduct)

	require.Len(t, recs, 1)
	assert.Equal(t, "general", recs[0].Category)
	assert.Equal(t, PriorityLow, recs[0].Priority)
}

func TestGenerateRecommendationsUsesProductTexts(t *testing.T) {
	subScores := map[string]float64{
		SubCompleteness: 90,
		SubImpact:       90,
		SubQuality:      20,
		SubNovelty:      90,
	}

	recs := GenerateRecommendations(subScores, ProductSubScoreOrder, 78, database.EntityProduct)

	require.Len(t, recs, 1)
	assert.Equal(t, SubQuality, recs[0].Category)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, productRecommendationTexts[SubQuality].title, recs[0].Title)
}
