package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Alert statuses
const (
	AlertActive       = "ACTIVE"
	AlertAcknowledged = "ACKNOWLEDGED"
	AlertInProgress   = "IN_PROGRESS"
	AlertResolved     = "RESOLVED"
	AlertDismissed    = "DISMISSED"
)

// AlertStore persists alerts. The core never deletes alerts; state changes
// go through UpdateStatus.
type AlertStore struct {
	db *DB
}

// NewAlertStore creates a new alert store
func NewAlertStore(db *DB) *AlertStore {
	return &AlertStore{db: db}
}

const alertColumns = `id, alert_type, category, entity_type, entity_id,
	severity_level, priority_score, status, title, message, context_data,
	recommended_actions, detected_at, created_at, updated_at, resolved_at, acknowledged_at`

func scanAlert(row interface{ Scan(...interface{}) error }) (*Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID, &a.AlertType, &a.Category, &a.EntityType, &a.EntityID,
		&a.SeverityLevel, &a.PriorityScore, &a.Status, &a.Title, &a.Message,
		&a.ContextData, &a.RecommendedActions, &a.DetectedAt, &a.CreatedAt,
		&a.UpdatedAt, &a.ResolvedAt, &a.AcknowledgedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindActive returns the ACTIVE alert for (entityType, entityID, alertType),
// or nil when none exists.
func (s *AlertStore) FindActive(ctx context.Context, entityType, entityID, alertType string) (*Alert, error) {
	stmt, err := s.db.GetPreparedStatement("find_active_alert")
	if err != nil {
		return nil, err
	}

	alert, err := scanAlert(stmt.QueryRowContext(ctx, entityType, entityID, alertType))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active alert: %w", err)
	}
	return alert, nil
}

// Insert persists a new alert. A duplicate ACTIVE alert for the same
// (entity, type) violates ux_alerts_active and is reported as a no-op.
func (s *AlertStore) Insert(ctx context.Context, a *Alert) (bool, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.AlertType, a.Category, a.EntityType, a.EntityID,
		a.SeverityLevel, a.PriorityScore, a.Status, a.Title, a.Message,
		a.ContextData, a.RecommendedActions, a.DetectedAt, a.CreatedAt,
		a.UpdatedAt, a.ResolvedAt, a.AcknowledgedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert alert: %w", err)
	}
	return true, nil
}

// GetAlert loads an alert by id
func (s *AlertStore) GetAlert(ctx context.Context, id string) (*Alert, error) {
	return scanAlert(s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id))
}

// UpdateStatus transitions an alert to a new status and stamps the
// transition timestamps. The caller validates the target status.
func (s *AlertStore) UpdateStatus(ctx context.Context, id, status string) error {
	now := time.Now()

	var resolvedClause, acknowledgedClause string
	args := []interface{}{status, now}

	switch status {
	case AlertResolved:
		resolvedClause = ", resolved_at = ?"
		args = append(args, now)
	case AlertAcknowledged:
		acknowledgedClause = ", acknowledged_at = ?"
		args = append(args, now)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET status = ?, updated_at = ?`+resolvedClause+acknowledgedClause+` WHERE id = ?`,
		args...)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check alert update: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAlerts returns alerts filtered by optional entity type, entity id and
// status, ordered by priority then recency.
func (s *AlertStore) ListAlerts(ctx context.Context, entityType, entityID, status string, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1 = 1`
	var args []interface{}

	if entityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, entityType)
	}
	if entityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, entityID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY priority_score DESC, detected_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}
