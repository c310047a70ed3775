package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ctei-manager/ctei-backend/internal/database"
	"github.com/ctei-manager/ctei-backend/internal/scoring"
)

// Store is the alert persistence contract the rule engine needs
type Store interface {
	FindActive(ctx context.Context, entityType, entityID, alertType string) (*database.Alert, error)
	Insert(ctx context.Context, a *database.Alert) (bool, error)
}

// Generator evaluates the snapshot rules against a fresh score result and
// persists any alerts, deduplicated against existing ACTIVE ones.
type Generator struct {
	store Store
}

// NewGenerator creates a new alert generator
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// EvaluateSnapshot runs all rules independently and returns how many alerts
// were created. A rule that matches an existing ACTIVE alert is a no-op.
func (g *Generator) EvaluateSnapshot(ctx context.Context, result *scoring.ScoreResult) (int, error) {
	created := 0

	if result.TotalScore < 50 {
		ok, err := g.raise(ctx, result, TypeLowScore, CategoryPerformance, SeverityHigh, 80,
			"Low evaluation score",
			fmt.Sprintf("Total score %.0f is below the acceptable threshold of 50.", result.TotalScore),
			[]string{
				"Review the generated recommendations",
				"Complete missing documentation and products",
			})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	// Timeline and collaboration rules only apply where those sub-scores
	// exist, which is project scoring.
	if result.EntityKind == database.EntityProject {
		if result.SubScore(scoring.SubTimeline) < 50 {
			ok, err := g.raise(ctx, result, TypeNoActivity, CategoryProductivity, SeverityMedium, 60,
				"Project behind schedule",
				fmt.Sprintf("Timeline score %.0f indicates the project is overdue or behind its expected progress.", result.SubScore(scoring.SubTimeline)),
				[]string{
					"Update the reported progress",
					"Revise the project schedule",
				})
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}

		if result.SubScore(scoring.SubCollaboration) < 40 && result.SubScore(scoring.SubProductivity) > 70 {
			ok, err := g.raise(ctx, result, TypeImprovementOpportunity, CategoryOpportunity, SeverityLow, 40,
				"Productive project with a small team",
				"High productivity with low collaboration suggests the project would benefit from additional collaborators.",
				[]string{
					"Invite external collaborators",
					"Register existing team members",
				})
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}

	return created, nil
}

// raise deduplicates and inserts one alert. Returns true when a new alert
// row was created.
func (g *Generator) raise(ctx context.Context, result *scoring.ScoreResult, alertType, category string, severity, priority int, title, message string, actions []string) (bool, error) {
	existing, err := g.store.FindActive(ctx, result.EntityKind, result.EntityID, alertType)
	if err != nil {
		return false, err
	}
	if existing != nil {
		slog.Debug("Active alert already exists, skipping",
			"entity_type", result.EntityKind,
			"entity_id", result.EntityID,
			"alert_type", alertType)
		return false, nil
	}

	contextData, err := json.Marshal(map[string]interface{}{
		"total_score": result.TotalScore,
		"sub_scores":  result.SubScores,
		"category":    result.EvaluationCategory,
	})
	if err != nil {
		return false, err
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return false, err
	}

	alert := database.NewAlert(alertType, category, result.EntityKind, result.EntityID,
		severity, priority, title, message, string(contextData), string(actionsJSON))

	inserted, err := g.store.Insert(ctx, alert)
	if err != nil {
		return false, err
	}
	if !inserted {
		// Lost the check-then-insert race; the unique index kept the
		// invariant, so this is a no-op success.
		return false, nil
	}

	slog.Info("Alert raised",
		"alert_type", alertType,
		"entity_type", result.EntityKind,
		"entity_id", result.EntityID,
		"severity", severity)
	return true, nil
}
