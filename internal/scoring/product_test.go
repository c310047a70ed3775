package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ctei-manager/ctei-backend/internal/database"
)

func TestProductCompleteness(t *testing.T) {
	pubDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		product  *database.Product
		expected float64
	}{
		{
			name:     "empty product scores zero",
			product:  &database.Product{},
			expected: 0,
		},
		{
			name: "all fields populated scores full",
			product: &database.Product{
				Name:            "Modelo predictivo de deserción",
				Description:     strings.Repeat("d", 80),
				Category:        "ART_A1",
				CategoryGroup:   database.GroupArticleA1,
				Journal:         "Revista Colombiana de Computación",
				DOI:             "10.1000/xyz123",
				PublicationDate: &pubDate,
			},
			expected: 100,
		},
		{
			name: "short name and description do not count",
			product: &database.Product{
				Name:        "App",
				Description: "breve",
				Category:    "SOFTWARE",
			},
			expected: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, productCompleteness(tt.product))
		})
	}
}

func TestProductImpact(t *testing.T) {
	tests := []struct {
		name     string
		product  *database.Product
		expected float64
	}{
		{
			name:     "no signals",
			product:  &database.Product{},
			expected: 0,
		},
		{
			name: "doi only",
			product: &database.Product{
				DOI: "10.1000/xyz123",
			},
			expected: 30,
		},
		{
			name: "all components saturated",
			product: &database.Product{
				DOI:           "10.1000/xyz123",
				ImpactFactor:  8.2,
				CitationCount: 120,
			},
			expected: 100,
		},
		{
			name: "midpoint factor and citations without doi",
			product: &database.Product{
				ImpactFactor:  2.5,
				CitationCount: 25,
			},
			expected: 35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, productImpact(tt.product), 0.001)
		})
	}
}

func TestProductQuality(t *testing.T) {
	tests := []struct {
		name     string
		product  *database.Product
		expected float64
	}{
		{"no signals", &database.Product{}, 0},
		{"journal only", &database.Product{Journal: "Nature"}, 40},
		{"mid impact factor tier", &database.Product{ImpactFactor: 1.5}, 15},
		{"high impact factor tier", &database.Product{ImpactFactor: 2.0}, 30},
		{"peer reviewed group", &database.Product{CategoryGroup: database.GroupArticleB}, 30},
		{
			name: "all quality signals",
			product: &database.Product{
				Journal:       "Nature",
				ImpactFactor:  3.1,
				CategoryGroup: database.GroupArticleA1,
			},
			expected: 100,
		},
		{"software group is not peer reviewed", &database.Product{CategoryGroup: database.GroupSoftware}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, productQuality(tt.product))
		})
	}
}

func TestProductNovelty(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	monthsAgo := func(m int) *time.Time {
		ts := now.AddDate(0, -m, 0)
		return &ts
	}

	tests := []struct {
		name     string
		product  *database.Product
		expected float64
	}{
		{"no publication date", &database.Product{}, 30},
		{"published six months ago", &database.Product{PublicationDate: monthsAgo(6)}, 100},
		{"published eighteen months ago", &database.Product{PublicationDate: monthsAgo(18)}, 70},
		{"published thirty months ago", &database.Product{PublicationDate: monthsAgo(30)}, 40},
		{"published five years ago", &database.Product{PublicationDate: monthsAgo(60)}, 20},
		{
			name:     "innovative group without date",
			product:  &database.Product{CategoryGroup: database.GroupPatent},
			expected: 50,
		},
		{
			name: "recent innovative clamps at hundred",
			product: &database.Product{
				CategoryGroup:   database.GroupSoftware,
				PublicationDate: monthsAgo(3),
			},
			expected: 100,
		},
		{
			name: "old innovative keeps the bonus",
			product: &database.Product{
				CategoryGroup:   database.GroupDatabase,
				PublicationDate: monthsAgo(60),
			},
			expected: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, productNovelty(tt.product, now))
		})
	}
}

func TestScoreProductSubScoresBounds(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	pubDate := now.AddDate(0, -2, 0)
	product := &database.Product{
		Name:            "Plataforma de datos abiertos",
		Description:     strings.Repeat("d", 90),
		Category:        "SOFTWARE",
		CategoryGroup:   database.GroupSoftware,
		Journal:         "JOSS",
		DOI:             "10.1000/soft",
		ImpactFactor:    12,
		CitationCount:   400,
		PublicationDate: &pubDate,
	}

	subScores := ScoreProductSubScores(product, now)

	assert.Len(t, subScores, len(ProductSubScoreOrder))
	for _, name := range ProductSubScoreOrder {
		score, ok := subScores[name]
		assert.True(t, ok, "missing sub-score %s", name)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}
