package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/ctei-manager/ctei-backend/internal/database"
)

// Field thresholds for project completeness. Populated means non-trivial
// content, not merely non-null.
const (
	minTitleLen        = 10
	minAbstractLen     = 50
	minMethodologyLen  = 100
	minIntroductionLen = 50
)

// Reference ceilings for impact normalization
const (
	impactFactorCeiling = 5.0
	citationCeiling     = 50.0
)

// ScoreProjectSubScores computes the six project sub-scores from the entity
// record and its aggregates. Every sub-score is clamped to [0,100].
func ScoreProjectSubScores(p *database.Project, m *database.ProjectMetrics, now time.Time) map[string]float64 {
	return map[string]float64{
		SubCompleteness:  projectCompleteness(p),
		SubCollaboration: projectCollaboration(m),
		SubProductivity:  projectProductivity(m),
		SubImpact:        projectImpact(m),
		SubInnovation:    projectInnovation(m),
		SubTimeline:      projectTimeline(p, now),
	}
}

// projectCompleteness scores populated fields with per-field point values.
// Narrative fields weigh more than dates and budget.
func projectCompleteness(p *database.Project) float64 {
	score := 0.0
	if len(strings.TrimSpace(p.Title)) > minTitleLen {
		score += 15
	}
	if len(strings.TrimSpace(p.Abstract)) > minAbstractLen {
		score += 20
	}
	if len(strings.TrimSpace(p.Methodology)) > minMethodologyLen {
		score += 20
	}
	if len(strings.TrimSpace(p.Introduction)) > minIntroductionLen {
		score += 15
	}
	if p.StartDate != nil {
		score += 10
	}
	if p.Budget > 0 {
		score += 10
	}
	if strings.TrimSpace(p.Keywords) != "" {
		score += 10
	}
	return clamp(score, 0, 100)
}

// projectCollaboration saturates at six collaborators; an external
// collaborator adds a capped bonus.
func projectCollaboration(m *database.ProjectMetrics) float64 {
	score := math.Min(float64(m.CollaboratorCount)*15, 85)
	if m.HasExternalCollaborator {
		score += 15
	}
	return clamp(score, 0, 100)
}

// projectProductivity saturates at five products with a bonus past ten
func projectProductivity(m *database.ProjectMetrics) float64 {
	score := float64(m.ProductCount) * 20
	if m.ProductCount >= 10 {
		score += 10
	}
	return clamp(score, 0, 100)
}

// projectImpact combines DOI coverage, normalized average impact factor and
// normalized citations (30/40/30). No products means no measurable impact.
func projectImpact(m *database.ProjectMetrics) float64 {
	if m.ProductCount == 0 {
		return 0
	}

	doiFraction := float64(m.DOICount) / float64(m.ProductCount)
	factorRatio := math.Min(m.AvgImpactFactor/impactFactorCeiling, 1)
	citationRatio := math.Min(float64(m.TotalCitations)/citationCeiling, 1)

	score := 0.30*doiFraction*100 + 0.40*factorRatio*100 + 0.30*citationRatio*100
	return clamp(score, 0, 100)
}

// projectInnovation rewards category-group diversity plus a flat bonus for
// any product in an innovative group (software, patent, database).
func projectInnovation(m *database.ProjectMetrics) float64 {
	score := math.Min(float64(m.DistinctCategoryGroups)*20, 70)
	if m.HasInnovativeProduct {
		score += 30
	}
	return clamp(score, 0, 100)
}

// projectTimeline compares schedule position against reported progress.
// No dates is neutral (50), not yet started is perfect (100), overdue and
// behind-schedule degrade in discrete bands.
func projectTimeline(p *database.Project, now time.Time) float64 {
	if p.StartDate == nil && p.EndDate == nil {
		return 50
	}

	if p.StartDate != nil && now.Before(*p.StartDate) {
		return 100
	}

	if p.EndDate != nil && now.After(*p.EndDate) {
		daysOverdue := now.Sub(*p.EndDate).Hours() / 24
		switch {
		case daysOverdue <= 30:
			return 60
		case daysOverdue <= 90:
			return 40
		default:
			return 20
		}
	}

	if p.StartDate == nil || p.EndDate == nil {
		// Schedule position cannot be derived from a single date.
		return 50
	}

	totalDays := p.EndDate.Sub(*p.StartDate).Hours() / 24
	if totalDays <= 0 {
		return 50
	}

	elapsedDays := now.Sub(*p.StartDate).Hours() / 24
	expected := elapsedDays / totalDays * 100
	shortfall := expected - p.ProgressPercent

	switch {
	case shortfall <= 0:
		return 100
	case shortfall < 10:
		return 85
	case shortfall < 25:
		return 70
	case shortfall < 40:
		return 55
	default:
		return 40
	}
}
