package alerting

import (
	"github.com/ctei-manager/ctei-backend/internal/database"
)

// Alert type taxonomy
const (
	TypeLowScore               = "LOW_SCORE"
	TypeNoActivity             = "NO_ACTIVITY"
	TypeImprovementOpportunity = "IMPROVEMENT_OPPORTUNITY"
	TypeResearcherOverload     = "RESEARCHER_OVERLOAD"
)

// Alert categories grouping the types
const (
	CategoryPerformance  = "PERFORMANCE"
	CategoryProductivity = "PRODUCTIVITY"
	CategoryQuality      = "QUALITY"
	CategoryOpportunity  = "OPPORTUNITY"
)

// Severity levels: 1 is critical, 5 is informational
const (
	SeverityCritical = 1
	SeverityHigh     = 2
	SeverityMedium   = 3
	SeverityLow      = 4
	SeverityInfo     = 5
)

// knownStatuses is the closed set of alert statuses. Transitions are driven
// by operator action; the core only validates the target is a known state.
var knownStatuses = map[string]bool{
	database.AlertActive:       true,
	database.AlertAcknowledged: true,
	database.AlertInProgress:   true,
	database.AlertResolved:     true,
	database.AlertDismissed:    true,
}

// ValidStatus reports whether s is one of the five known alert statuses
func ValidStatus(s string) bool {
	return knownStatuses[s]
}
