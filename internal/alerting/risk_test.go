package alerting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctei-manager/ctei-backend/internal/database"
	apperrors "github.com/ctei-manager/ctei-backend/internal/errors"
)

type fakeLoadReader struct {
	owners []database.OwnerLoad
	err    error
}

func (f *fakeLoadReader) OverloadedOwners(_ context.Context, threshold int) ([]database.OwnerLoad, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.owners, nil
}

func TestRiskAnalyzerOverload(t *testing.T) {
	store := newFakeStore()
	reader := &fakeLoadReader{
		owners: []database.OwnerLoad{
			{ResearcherID: "res-1", ActiveCount: 5},
		},
	}
	analyzer := NewRiskAnalyzer(reader, store)

	report, err := analyzer.Run(context.Background(), RuleSetOverload)
	require.NoError(t, err)

	assert.Equal(t, 1, report.AlertsCreated)
	require.Len(t, report.Findings, 1)
	assert.True(t, report.Findings[0].AlertCreated)
	assert.Equal(t, database.EntityResearcher, report.Findings[0].EntityType)
	assert.Equal(t, "res-1", report.Findings[0].EntityID)

	require.Len(t, store.inserted, 1)
	alert := store.inserted[0]
	assert.Equal(t, TypeResearcherOverload, alert.AlertType)
	assert.Equal(t, CategoryQuality, alert.Category)
	assert.Equal(t, SeverityHigh, alert.SeverityLevel)
	assert.Equal(t, 85, alert.PriorityScore) // 60 + 5*5
}

func TestRiskAnalyzerPriorityGrowsWithLoad(t *testing.T) {
	store := newFakeStore()
	reader := &fakeLoadReader{
		owners: []database.OwnerLoad{
			{ResearcherID: "res-1", ActiveCount: 5},
			{ResearcherID: "res-2", ActiveCount: 8},
		},
	}
	analyzer := NewRiskAnalyzer(reader, store)

	report, err := analyzer.Run(context.Background(), RuleSetAll)
	require.NoError(t, err)
	assert.Equal(t, 2, report.AlertsCreated)

	require.Len(t, store.inserted, 2)
	assert.Equal(t, 85, store.inserted[0].PriorityScore)
	assert.Equal(t, 100, store.inserted[1].PriorityScore)
}

func TestRiskAnalyzerSecondRunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	reader := &fakeLoadReader{
		owners: []database.OwnerLoad{
			{ResearcherID: "res-1", ActiveCount: 6},
		},
	}
	analyzer := NewRiskAnalyzer(reader, store)

	first, err := analyzer.Run(context.Background(), RuleSetAll)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AlertsCreated)

	second, err := analyzer.Run(context.Background(), RuleSetAll)
	require.NoError(t, err)
	assert.Equal(t, 0, second.AlertsCreated)
	require.Len(t, second.Findings, 1)
	assert.False(t, second.Findings[0].AlertCreated)
	assert.Len(t, store.inserted, 1)
}

func TestRiskAnalyzerEmptyRuleSetDefaultsToAll(t *testing.T) {
	store := newFakeStore()
	analyzer := NewRiskAnalyzer(&fakeLoadReader{}, store)

	report, err := analyzer.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{RuleSetOverload}, report.RuleSets)
	assert.Empty(t, report.Findings)
}

func TestRiskAnalyzerUnknownRuleSet(t *testing.T) {
	analyzer := NewRiskAnalyzer(&fakeLoadReader{}, newFakeStore())

	_, err := analyzer.Run(context.Background(), "bogus")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CategoryValidation, appErr.Category)
}

func TestRiskAnalyzerReaderFailure(t *testing.T) {
	analyzer := NewRiskAnalyzer(&fakeLoadReader{err: errors.New("db gone")}, newFakeStore())

	_, err := analyzer.Run(context.Background(), RuleSetAll)
	require.Error(t, err)
}
