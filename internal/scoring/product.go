package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/ctei-manager/ctei-backend/internal/database"
)

const (
	minProductNameLen        = 10
	minProductDescriptionLen = 50
)

// Category groups considered peer-reviewed for quality scoring
var peerReviewedGroups = map[string]bool{
	database.GroupArticleA1: true,
	database.GroupArticleB:  true,
}

// Category groups considered innovative
var innovativeGroups = map[string]bool{
	database.GroupSoftware: true,
	database.GroupPatent:   true,
	database.GroupDatabase: true,
}

// ScoreProductSubScores computes the four product sub-scores from the
// product record. Every sub-score is clamped to [0,100].
func ScoreProductSubScores(p *database.Product, now time.Time) map[string]float64 {
	return map[string]float64{
		SubCompleteness: productCompleteness(p),
		SubImpact:       productImpact(p),
		SubQuality:      productQuality(p),
		SubNovelty:      productNovelty(p, now),
	}
}

func productCompleteness(p *database.Product) float64 {
	score := 0.0
	if len(strings.TrimSpace(p.Name)) > minProductNameLen {
		score += 20
	}
	if len(strings.TrimSpace(p.Description)) > minProductDescriptionLen {
		score += 25
	}
	if strings.TrimSpace(p.Category) != "" {
		score += 15
	}
	if strings.TrimSpace(p.Journal) != "" {
		score += 15
	}
	if strings.TrimSpace(p.DOI) != "" {
		score += 15
	}
	if p.PublicationDate != nil {
		score += 10
	}
	return clamp(score, 0, 100)
}

// productImpact mirrors the project formula on a single product: DOI
// presence, normalized impact factor and normalized citations (30/40/30).
func productImpact(p *database.Product) float64 {
	doiScore := 0.0
	if strings.TrimSpace(p.DOI) != "" {
		doiScore = 100
	}
	factorRatio := math.Min(p.ImpactFactor/impactFactorCeiling, 1)
	citationRatio := math.Min(float64(p.CitationCount)/citationCeiling, 1)

	score := 0.30*doiScore + 0.40*factorRatio*100 + 0.30*citationRatio*100
	return clamp(score, 0, 100)
}

// productQuality uses journal and type heuristics: a named venue, a usable
// impact factor tier and a peer-reviewed category group.
func productQuality(p *database.Product) float64 {
	score := 0.0
	if strings.TrimSpace(p.Journal) != "" {
		score += 40
	}
	switch {
	case p.ImpactFactor >= 2:
		score += 30
	case p.ImpactFactor >= 1:
		score += 15
	}
	if peerReviewedGroups[p.CategoryGroup] {
		score += 30
	}
	return clamp(score, 0, 100)
}

// productNovelty degrades with publication age in 12/24/36 month bands and
// rewards innovative category groups.
func productNovelty(p *database.Product, now time.Time) float64 {
	score := 30.0
	if p.PublicationDate != nil {
		months := now.Sub(*p.PublicationDate).Hours() / 24 / 30
		switch {
		case months <= 12:
			score = 100
		case months <= 24:
			score = 70
		case months <= 36:
			score = 40
		default:
			score = 20
		}
	}
	if innovativeGroups[p.CategoryGroup] {
		score += 20
	}
	return clamp(score, 0, 100)
}
