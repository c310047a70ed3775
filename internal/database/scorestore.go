package database

import (
	"context"
	"fmt"
)

// ScoreStore persists versioned score snapshots. Retire and insert run in a
// single transaction so exactly one snapshot per entity stays current.
type ScoreStore struct {
	db *DB
}

// NewScoreStore creates a new score store
func NewScoreStore(db *DB) *ScoreStore {
	return &ScoreStore{db: db}
}

// InsertSnapshot retires the previous current snapshot for the entity and
// inserts the new one atomically. Snapshots are never deleted.
func (s *ScoreStore) InsertSnapshot(ctx context.Context, snap *ScoreSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE score_snapshots SET is_current = FALSE
		WHERE entity_kind = ? AND entity_id = ? AND is_current = TRUE
	`, snap.EntityKind, snap.EntityID)
	if err != nil {
		return fmt.Errorf("failed to retire current snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO score_snapshots (id, entity_id, entity_kind, sub_scores, total_score,
			evaluation_category, recommendations, calculated_at, is_current)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE)
	`, snap.ID, snap.EntityID, snap.EntityKind, snap.SubScores, snap.TotalScore,
		snap.EvaluationCategory, snap.Recommendations, snap.CalculatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return tx.Commit()
}

// CurrentSnapshot returns the current snapshot for an entity, or
// sql.ErrNoRows when the entity has never been scored.
func (s *ScoreStore) CurrentSnapshot(ctx context.Context, entityKind, entityID string) (*ScoreSnapshot, error) {
	stmt, err := s.db.GetPreparedStatement("get_current_snapshot")
	if err != nil {
		return nil, err
	}

	var snap ScoreSnapshot
	err = stmt.QueryRowContext(ctx, entityKind, entityID).Scan(
		&snap.ID, &snap.EntityID, &snap.EntityKind, &snap.SubScores, &snap.TotalScore,
		&snap.EvaluationCategory, &snap.Recommendations, &snap.CalculatedAt, &snap.IsCurrent,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SnapshotHistory returns prior snapshots for an entity, newest first
func (s *ScoreStore) SnapshotHistory(ctx context.Context, entityKind, entityID string, limit int) ([]ScoreSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_id, entity_kind, sub_scores, total_score,
			evaluation_category, recommendations, calculated_at, is_current
		FROM score_snapshots
		WHERE entity_kind = ? AND entity_id = ?
		ORDER BY calculated_at DESC
		LIMIT ?
	`, entityKind, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer rows.Close()

	var history []ScoreSnapshot
	for rows.Next() {
		var snap ScoreSnapshot
		if err := rows.Scan(
			&snap.ID, &snap.EntityID, &snap.EntityKind, &snap.SubScores, &snap.TotalScore,
			&snap.EvaluationCategory, &snap.Recommendations, &snap.CalculatedAt, &snap.IsCurrent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		history = append(history, snap)
	}
	return history, rows.Err()
}
