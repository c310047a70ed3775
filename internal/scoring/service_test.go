package scoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctei-manager/ctei-backend/internal/database"
	"github.com/ctei-manager/ctei-backend/internal/errors"
)

type fakeReader struct {
	projects map[string]*database.Project
	products map[string]*database.Product
	metrics  map[string]*database.ProjectMetrics
	weights  map[string]float64
}

func (f *fakeReader) GetProject(_ context.Context, id string) (*database.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeReader) GetProduct(_ context.Context, id string) (*database.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeReader) GetProjectMetrics(_ context.Context, projectID string) (*database.ProjectMetrics, error) {
	if m, ok := f.metrics[projectID]; ok {
		return m, nil
	}
	return &database.ProjectMetrics{}, nil
}

func (f *fakeReader) ActiveScoringWeights(_ context.Context) (map[string]float64, error) {
	return f.weights, nil
}

type fakeSnapshotStore struct {
	inserted []*database.ScoreSnapshot
}

func (f *fakeSnapshotStore) InsertSnapshot(_ context.Context, snap *database.ScoreSnapshot) error {
	f.inserted = append(f.inserted, snap)
	return nil
}

func (f *fakeSnapshotStore) CurrentSnapshot(_ context.Context, entityKind, entityID string) (*database.ScoreSnapshot, error) {
	for i := len(f.inserted) - 1; i >= 0; i-- {
		snap := f.inserted[i]
		if snap.EntityKind == entityKind && snap.EntityID == entityID {
			return snap, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSnapshotStore) SnapshotHistory(_ context.Context, entityKind, entityID string, limit int) ([]database.ScoreSnapshot, error) {
	var snaps []database.ScoreSnapshot
	for i := len(f.inserted) - 1; i >= 0 && len(snaps) < limit; i-- {
		snap := f.inserted[i]
		if snap.EntityKind == entityKind && snap.EntityID == entityID {
			snaps = append(snaps, *snap)
		}
	}
	return snaps, nil
}

type fakeEvaluator struct {
	calls   int
	lastRes *ScoreResult
}

func (f *fakeEvaluator) EvaluateSnapshot(_ context.Context, result *ScoreResult) (int, error) {
	f.calls++
	f.lastRes = result
	return 0, nil
}

func newTestService(reader *fakeReader) (*Service, *fakeSnapshotStore, *fakeEvaluator) {
	snapshots := &fakeSnapshotStore{}
	evaluator := &fakeEvaluator{}
	svc := NewService(reader, snapshots, evaluator)
	svc.now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc, snapshots, evaluator
}

func TestCalculateProjectScore(t *testing.T) {
	reader := &fakeReader{
		projects: map[string]*database.Project{
			"proj-1": fullyDocumentedProject(nil, nil),
		},
		metrics: map[string]*database.ProjectMetrics{
			"proj-1": {
				CollaboratorCount:       4,
				HasExternalCollaborator: true,
				ProductCount:            3,
				DOICount:                2,
				AvgImpactFactor:         2.0,
				TotalCitations:          10,
				DistinctCategoryGroups:  2,
			},
		},
	}

	svc, snapshots, evaluator := newTestService(reader)

	result, err := svc.CalculateProjectScore(context.Background(), "proj-1")
	require.NoError(t, err)

	assert.Equal(t, "proj-1", result.EntityID)
	assert.Equal(t, database.EntityProject, result.EntityKind)
	assert.Len(t, result.SubScores, len(ProjectSubScoreOrder))
	assert.Equal(t, Classify(result.TotalScore), result.EvaluationCategory)

	require.Len(t, snapshots.inserted, 1)
	snap := snapshots.inserted[0]
	assert.True(t, snap.IsCurrent)
	assert.Equal(t, result.TotalScore, snap.TotalScore)
	assert.JSONEq(t, mustJSON(t, result.SubScores), snap.SubScores)

	assert.Equal(t, 1, evaluator.calls)
	assert.Equal(t, result, evaluator.lastRes)
}

func TestCalculateProjectScoreNotFound(t *testing.T) {
	svc, snapshots, _ := newTestService(&fakeReader{})

	_, err := svc.CalculateProjectScore(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, snapshots.inserted)
}

func TestCalculateProductScore(t *testing.T) {
	pubDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{
		products: map[string]*database.Product{
			"prod-1": {
				ID:              "prod-1",
				Name:            "Artículo sobre redes neuronales",
				Description:     "Un estudio extenso sobre arquitecturas de redes neuronales profundas.",
				Category:        "ART_A1",
				CategoryGroup:   database.GroupArticleA1,
				Journal:         "IEEE Transactions",
				DOI:             "10.1000/abc",
				ImpactFactor:    3.2,
				CitationCount:   18,
				PublicationDate: &pubDate,
			},
		},
	}

	svc, snapshots, _ := newTestService(reader)

	result, err := svc.CalculateProductScore(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, database.EntityProduct, result.EntityKind)
	assert.Len(t, result.SubScores, len(ProductSubScoreOrder))
	assert.Equal(t, CategoryExcelente, result.EvaluationCategory)
	require.Len(t, snapshots.inserted, 1)
}

func TestCalculateProductScoreNotFound(t *testing.T) {
	svc, _, _ := newTestService(&fakeReader{})

	_, err := svc.CalculateProductScore(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCurrentScoreRoundTrip(t *testing.T) {
	reader := &fakeReader{
		projects: map[string]*database.Project{
			"proj-1": fullyDocumentedProject(nil, nil),
		},
	}
	svc, _, _ := newTestService(reader)

	calculated, err := svc.CalculateProjectScore(context.Background(), "proj-1")
	require.NoError(t, err)

	current, err := svc.CurrentScore(context.Background(), database.EntityProject, "proj-1")
	require.NoError(t, err)

	assert.Equal(t, calculated.TotalScore, current.TotalScore)
	assert.Equal(t, calculated.EvaluationCategory, current.EvaluationCategory)
	assert.Equal(t, calculated.SubScores, current.SubScores)
	assert.Equal(t, ProjectSubScoreOrder, current.Order)
	assert.Len(t, current.Recommendations, len(calculated.Recommendations))
}

func TestCurrentScoreNotFound(t *testing.T) {
	svc, _, _ := newTestService(&fakeReader{})

	_, err := svc.CurrentScore(context.Background(), database.EntityProject, "proj-1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestScoreHistoryNewestFirst(t *testing.T) {
	reader := &fakeReader{
		projects: map[string]*database.Project{
			"proj-1": fullyDocumentedProject(nil, nil),
		},
	}
	svc, _, _ := newTestService(reader)

	for i := 0; i < 3; i++ {
		_, err := svc.CalculateProjectScore(context.Background(), "proj-1")
		require.NoError(t, err)
	}

	history, err := svc.ScoreHistory(context.Background(), database.EntityProject, "proj-1", 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	for _, result := range history {
		assert.Equal(t, "proj-1", result.EntityID)
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
