package scoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ctei-manager/ctei-backend/internal/database"
	"github.com/ctei-manager/ctei-backend/internal/errors"
)

// EntityReader supplies entity records and the aggregates scoring needs
type EntityReader interface {
	GetProject(ctx context.Context, id string) (*database.Project, error)
	GetProduct(ctx context.Context, id string) (*database.Product, error)
	GetProjectMetrics(ctx context.Context, projectID string) (*database.ProjectMetrics, error)
	ActiveScoringWeights(ctx context.Context) (map[string]float64, error)
}

// SnapshotStore persists and serves score snapshots
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snap *database.ScoreSnapshot) error
	CurrentSnapshot(ctx context.Context, entityKind, entityID string) (*database.ScoreSnapshot, error)
	SnapshotHistory(ctx context.Context, entityKind, entityID string, limit int) ([]database.ScoreSnapshot, error)
}

// AlertEvaluator inspects a fresh score result and raises any alerts
type AlertEvaluator interface {
	EvaluateSnapshot(ctx context.Context, result *ScoreResult) (int, error)
}

// Service orchestrates one scoring invocation: load entity, read metrics,
// compute sub-scores, classify, recommend, persist the snapshot and run the
// alert rules on the outcome.
type Service struct {
	repo      EntityReader
	snapshots SnapshotStore
	alerts    AlertEvaluator
	now       func() time.Time
}

// NewService creates a scoring service. alerts may be nil for callers that
// only read scores.
func NewService(repo EntityReader, snapshots SnapshotStore, alerts AlertEvaluator) *Service {
	return &Service{
		repo:      repo,
		snapshots: snapshots,
		alerts:    alerts,
		now:       time.Now,
	}
}

// CalculateProjectScore scores one project and persists the snapshot
func (s *Service) CalculateProjectScore(ctx context.Context, projectID string) (*ScoreResult, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("project", projectID)
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to load project", err)
	}

	metrics, err := s.repo.GetProjectMetrics(ctx, projectID)
	if err != nil {
		return nil, errors.NewInternalError("failed to read project metrics", err)
	}

	weights, err := s.repo.ActiveScoringWeights(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to read scoring weights", err)
	}

	now := s.now()
	subScores := ScoreProjectSubScores(project, metrics, now)
	total := WeightedTotal(subScores, weights, defaultProjectWeights)

	result := &ScoreResult{
		EntityID:           projectID,
		EntityKind:         database.EntityProject,
		SubScores:          subScores,
		Order:              ProjectSubScoreOrder,
		TotalScore:         total,
		EvaluationCategory: Classify(total),
		Recommendations:    GenerateRecommendations(subScores, ProjectSubScoreOrder, total, database.EntityProject),
		CalculatedAt:       now,
	}

	return s.finishCalculation(ctx, result)
}

// CalculateProductScore scores one product and persists the snapshot
func (s *Service) CalculateProductScore(ctx context.Context, productID string) (*ScoreResult, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("product", productID)
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to load product", err)
	}

	weights, err := s.repo.ActiveScoringWeights(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to read scoring weights", err)
	}

	now := s.now()
	subScores := ScoreProductSubScores(product, now)
	total := WeightedTotal(subScores, weights, defaultProductWeights)

	result := &ScoreResult{
		EntityID:           productID,
		EntityKind:         database.EntityProduct,
		SubScores:          subScores,
		Order:              ProductSubScoreOrder,
		TotalScore:         total,
		EvaluationCategory: Classify(total),
		Recommendations:    GenerateRecommendations(subScores, ProductSubScoreOrder, total, database.EntityProduct),
		CalculatedAt:       now,
	}

	return s.finishCalculation(ctx, result)
}

// finishCalculation persists the snapshot and runs the alert rules. The
// snapshot write is not rolled back when alert evaluation fails.
func (s *Service) finishCalculation(ctx context.Context, result *ScoreResult) (*ScoreResult, error) {
	subScoresJSON, err := json.Marshal(result.SubScores)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode sub-scores", err)
	}
	recsJSON, err := json.Marshal(result.Recommendations)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode recommendations", err)
	}

	snap := database.NewScoreSnapshot(result.EntityKind, result.EntityID,
		string(subScoresJSON), result.TotalScore, result.EvaluationCategory, string(recsJSON))
	snap.CalculatedAt = result.CalculatedAt

	if err := s.snapshots.InsertSnapshot(ctx, snap); err != nil {
		return nil, errors.NewInternalError("failed to persist score snapshot", err)
	}

	if s.alerts != nil {
		created, err := s.alerts.EvaluateSnapshot(ctx, result)
		if err != nil {
			return nil, errors.NewInternalError("failed to evaluate alert rules", err)
		}
		if created > 0 {
			slog.Info("Alerts raised from score calculation",
				"entity_kind", result.EntityKind,
				"entity_id", result.EntityID,
				"alerts_created", created)
		}
	}

	slog.Info("Score calculated",
		"entity_kind", result.EntityKind,
		"entity_id", result.EntityID,
		"total_score", result.TotalScore,
		"category", result.EvaluationCategory)

	return result, nil
}

// CurrentScore returns the current snapshot for an entity decoded into a
// score result.
func (s *Service) CurrentScore(ctx context.Context, entityKind, entityID string) (*ScoreResult, error) {
	snap, err := s.snapshots.CurrentSnapshot(ctx, entityKind, entityID)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("score snapshot", entityID)
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to load current snapshot", err)
	}
	return decodeSnapshot(snap)
}

// ScoreHistory returns prior snapshots for an entity, newest first
func (s *Service) ScoreHistory(ctx context.Context, entityKind, entityID string, limit int) ([]*ScoreResult, error) {
	snaps, err := s.snapshots.SnapshotHistory(ctx, entityKind, entityID, limit)
	if err != nil {
		return nil, errors.NewInternalError("failed to load snapshot history", err)
	}

	results := make([]*ScoreResult, 0, len(snaps))
	for i := range snaps {
		result, err := decodeSnapshot(&snaps[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func decodeSnapshot(snap *database.ScoreSnapshot) (*ScoreResult, error) {
	result := &ScoreResult{
		EntityID:           snap.EntityID,
		EntityKind:         snap.EntityKind,
		TotalScore:         snap.TotalScore,
		EvaluationCategory: snap.EvaluationCategory,
		CalculatedAt:       snap.CalculatedAt,
	}

	if err := json.Unmarshal([]byte(snap.SubScores), &result.SubScores); err != nil {
		return nil, errors.NewInternalError("failed to decode snapshot sub-scores", err)
	}
	if err := json.Unmarshal([]byte(snap.Recommendations), &result.Recommendations); err != nil {
		return nil, errors.NewInternalError("failed to decode snapshot recommendations", err)
	}

	if snap.EntityKind == database.EntityProduct {
		result.Order = ProductSubScoreOrder
	} else {
		result.Order = ProjectSubScoreOrder
	}
	return result, nil
}
