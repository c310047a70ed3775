package database

import (
	"time"

	"github.com/google/uuid"
)

// Entity kinds scored by the engine
const (
	EntityProject    = "PROJECT"
	EntityProduct    = "PRODUCT"
	EntityResearcher = "RESEARCHER"
	EntitySystem     = "SYSTEM"
)

// Project statuses
const (
	ProjectActive    = "ACTIVE"
	ProjectCompleted = "COMPLETED"
	ProjectSuspended = "SUSPENDED"
)

// Collaborator roles
const (
	RoleInternal = "INTERNAL"
	RoleExternal = "EXTERNAL"
	RoleStudent  = "STUDENT"
)

// Product category groups
const (
	GroupArticleA1 = "ART_A1"
	GroupArticleB  = "ART_B"
	GroupSoftware  = "SOFTWARE"
	GroupPatent    = "PATENT"
	GroupDatabase  = "DATABASE"
	GroupBook      = "BOOK"
	GroupEvent     = "EVENT"
)

// Project represents a research project
type Project struct {
	ID              string     `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Abstract        string     `json:"abstract" db:"abstract"`
	Introduction    string     `json:"introduction" db:"introduction"`
	Methodology     string     `json:"methodology" db:"methodology"`
	Keywords        string     `json:"keywords" db:"keywords"`
	Budget          float64    `json:"budget" db:"budget"`
	Status          string     `json:"status" db:"status"`
	OwnerID         string     `json:"owner_id" db:"owner_id"`
	ProgressPercent float64    `json:"progress_percent" db:"progress_percent"`
	StartDate       *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Product represents a scientific product attached to a project
type Product struct {
	ID              string     `json:"id" db:"id"`
	ProjectID       string     `json:"project_id" db:"project_id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description" db:"description"`
	Category        string     `json:"category" db:"category"`
	CategoryGroup   string     `json:"category_group" db:"category_group"`
	DOI             string     `json:"doi,omitempty" db:"doi"`
	Journal         string     `json:"journal,omitempty" db:"journal"`
	ImpactFactor    float64    `json:"impact_factor" db:"impact_factor"`
	CitationCount   int        `json:"citation_count" db:"citation_count"`
	PublicationDate *time.Time `json:"publication_date,omitempty" db:"publication_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Collaborator represents a researcher attached to a project
type Collaborator struct {
	ID           string    `json:"id" db:"id"`
	ProjectID    string    `json:"project_id" db:"project_id"`
	ResearcherID string    `json:"researcher_id" db:"researcher_id"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ScoreSnapshot is one immutable score record for an entity.
// At most one snapshot per (entity_kind, entity_id) has IsCurrent set.
type ScoreSnapshot struct {
	ID                 string    `json:"id" db:"id"`
	EntityID           string    `json:"entity_id" db:"entity_id"`
	EntityKind         string    `json:"entity_kind" db:"entity_kind"`
	SubScores          string    `json:"sub_scores" db:"sub_scores"`           // JSON map name -> score
	TotalScore         float64   `json:"total_score" db:"total_score"`
	EvaluationCategory string    `json:"evaluation_category" db:"evaluation_category"`
	Recommendations    string    `json:"recommendations" db:"recommendations"` // JSON array
	CalculatedAt       time.Time `json:"calculated_at" db:"calculated_at"`
	IsCurrent          bool      `json:"is_current" db:"is_current"`
}

// Alert represents a persisted, status-tracked risk or opportunity notification
type Alert struct {
	ID                 string     `json:"id" db:"id"`
	AlertType          string     `json:"alert_type" db:"alert_type"`
	Category           string     `json:"category" db:"category"`
	EntityType         string     `json:"entity_type" db:"entity_type"`
	EntityID           string     `json:"entity_id" db:"entity_id"`
	SeverityLevel      int        `json:"severity_level" db:"severity_level"` // 1 critical .. 5 informational
	PriorityScore      int        `json:"priority_score" db:"priority_score"`
	Status             string     `json:"status" db:"status"`
	Title              string     `json:"title" db:"title"`
	Message            string     `json:"message" db:"message"`
	ContextData        string     `json:"context_data" db:"context_data"`               // JSON payload
	RecommendedActions string     `json:"recommended_actions" db:"recommended_actions"` // JSON array
	DetectedAt         time.Time  `json:"detected_at" db:"detected_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	AcknowledgedAt     *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
}

// ScoringCriterion is an externally configured weight for one sub-score
type ScoringCriterion struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Weight    float64   `json:"weight" db:"weight"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewScoreSnapshot creates a current snapshot with generated ID
func NewScoreSnapshot(entityKind, entityID, subScores string, total float64, category, recommendations string) *ScoreSnapshot {
	return &ScoreSnapshot{
		ID:                 uuid.New().String(),
		EntityID:           entityID,
		EntityKind:         entityKind,
		SubScores:          subScores,
		TotalScore:         total,
		EvaluationCategory: category,
		Recommendations:    recommendations,
		CalculatedAt:       time.Now(),
		IsCurrent:          true,
	}
}

// NewAlert creates an active alert with generated ID
func NewAlert(alertType, category, entityType, entityID string, severity, priority int, title, message, contextData, actions string) *Alert {
	now := time.Now()
	return &Alert{
		ID:                 uuid.New().String(),
		AlertType:          alertType,
		Category:           category,
		EntityType:         entityType,
		EntityID:           entityID,
		SeverityLevel:      severity,
		PriorityScore:      priority,
		Status:             "ACTIVE",
		Title:              title,
		Message:            message,
		ContextData:        contextData,
		RecommendedActions: actions,
		DetectedAt:         now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
