package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected string
	}{
		{"zero", 0, CategoryNecesitaMejora},
		{"just under regular", 49.9, CategoryNecesitaMejora},
		{"regular lower bound", 50, CategoryRegular},
		{"just under bueno", 69.9, CategoryRegular},
		{"bueno lower bound", 70, CategoryBueno},
		{"just under excelente", 84.9, CategoryBueno},
		{"excelente lower bound", 85, CategoryExcelente},
		{"perfect", 100, CategoryExcelente},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.score))
		})
	}
}
