package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ctei-manager/ctei-backend/internal/database"
	"github.com/ctei-manager/ctei-backend/internal/errors"
)

// Researcher overload rule parameters. Priority grows with the number of
// active projects owned.
const (
	OverloadThreshold         = 4
	overloadBasePriority      = 60
	overloadPriorityIncrement = 5
)

// Rule set selectors for RunAnalysis
const (
	RuleSetAll      = "all"
	RuleSetOverload = "overload"
)

// LoadReader supplies the cross-entity aggregates the risk scan needs
type LoadReader interface {
	OverloadedOwners(ctx context.Context, threshold int) ([]database.OwnerLoad, error)
}

// Finding describes one condition detected during a risk scan
type Finding struct {
	RuleSet      string `json:"rule_set"`
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	Detail       string `json:"detail"`
	AlertCreated bool   `json:"alert_created"`
}

// RiskReport summarizes one risk analysis run
type RiskReport struct {
	RuleSets      []string  `json:"rule_sets"`
	AlertsCreated int       `json:"alerts_created"`
	Findings      []Finding `json:"findings"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// RiskAnalyzer scans entities for cross-cutting conditions independent of
// any single score snapshot and writes alerts directly to the store.
type RiskAnalyzer struct {
	reader LoadReader
	store  Store
}

// NewRiskAnalyzer creates a new risk analyzer
func NewRiskAnalyzer(reader LoadReader, store Store) *RiskAnalyzer {
	return &RiskAnalyzer{reader: reader, store: store}
}

// Run executes the selected rule set. ruleSet is "all" or a named subset;
// an unknown name is an invalid-input failure. Per-entity insert failures
// are logged and do not abort the scan.
func (a *RiskAnalyzer) Run(ctx context.Context, ruleSet string) (*RiskReport, error) {
	if ruleSet == "" {
		ruleSet = RuleSetAll
	}

	report := &RiskReport{
		Findings:  []Finding{},
		StartedAt: time.Now(),
	}

	switch ruleSet {
	case RuleSetAll, RuleSetOverload:
		report.RuleSets = append(report.RuleSets, RuleSetOverload)
		if err := a.scanOverload(ctx, report); err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown risk rule set: %s", ruleSet))
	}

	report.FinishedAt = time.Now()
	slog.Info("Risk analysis completed",
		"rule_sets", report.RuleSets,
		"findings", len(report.Findings),
		"alerts_created", report.AlertsCreated)
	return report, nil
}

// scanOverload raises one RESEARCHER_OVERLOAD alert per researcher owning
// more than OverloadThreshold active projects, deduplicated per researcher.
func (a *RiskAnalyzer) scanOverload(ctx context.Context, report *RiskReport) error {
	owners, err := a.reader.OverloadedOwners(ctx, OverloadThreshold)
	if err != nil {
		return errors.NewInternalError("failed to scan researcher load", err)
	}

	for _, owner := range owners {
		finding := Finding{
			RuleSet:    RuleSetOverload,
			EntityType: database.EntityResearcher,
			EntityID:   owner.ResearcherID,
			Detail:     fmt.Sprintf("%d active projects owned", owner.ActiveCount),
		}

		created, err := a.raiseOverload(ctx, owner)
		if err != nil {
			// One bad insert must not abort the remaining scan.
			slog.Error("Failed to raise overload alert",
				"researcher_id", owner.ResearcherID,
				"error", err)
			report.Findings = append(report.Findings, finding)
			continue
		}

		finding.AlertCreated = created
		if created {
			report.AlertsCreated++
		}
		report.Findings = append(report.Findings, finding)
	}

	return nil
}

func (a *RiskAnalyzer) raiseOverload(ctx context.Context, owner database.OwnerLoad) (bool, error) {
	existing, err := a.store.FindActive(ctx, database.EntityResearcher, owner.ResearcherID, TypeResearcherOverload)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	contextData, err := json.Marshal(map[string]interface{}{
		"active_projects": owner.ActiveCount,
		"threshold":       OverloadThreshold,
	})
	if err != nil {
		return false, err
	}
	actionsJSON, err := json.Marshal([]string{
		"Redistribute project leadership",
		"Review the researcher's active project portfolio",
	})
	if err != nil {
		return false, err
	}

	priority := overloadBasePriority + owner.ActiveCount*overloadPriorityIncrement
	alert := database.NewAlert(TypeResearcherOverload, CategoryQuality,
		database.EntityResearcher, owner.ResearcherID,
		SeverityHigh, priority,
		"Researcher overload",
		fmt.Sprintf("Researcher owns %d active projects, above the limit of %d.", owner.ActiveCount, OverloadThreshold),
		string(contextData), string(actionsJSON))

	inserted, err := a.store.Insert(ctx, alert)
	if err != nil {
		return false, err
	}
	return inserted, nil
}
