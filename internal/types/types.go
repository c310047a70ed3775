package types

// AlertStatusRequest is the body for alert status transitions
type AlertStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RiskAnalysisRequest selects the rule set for a risk analysis run
type RiskAnalysisRequest struct {
	Type string `json:"type"`
}
