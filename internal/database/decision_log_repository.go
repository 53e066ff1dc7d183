package database

import (
	"context"
	"fmt"

	"github.com/example/remindagent/pkg/models"
	"github.com/jmoiron/sqlx"
)

// DecisionLogRepository appends to the decision audit trail
type DecisionLogRepository struct {
	db *sqlx.DB
}

// NewDecisionLogRepository creates a new repository instance
func NewDecisionLogRepository(db *sqlx.DB) *DecisionLogRepository {
	return &DecisionLogRepository{db: db}
}

// Create inserts a decision log entry
func (r *DecisionLogRepository) Create(ctx context.Context, entry *models.DecisionLogEntry) error {
	query := r.db.Rebind(`
		INSERT INTO decision_log (
			user_id, decision_type, reasoning, action_taken, created_at
		) VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		entry.UserID,
		entry.DecisionType,
		entry.Reasoning,
		entry.ActionTaken,
		entry.CreatedAt.UTC(),
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create decision log entry: %w", err)
	}
	return nil
}

// GetByUserID returns a user's decision log in insertion order
func (r *DecisionLogRepository) GetByUserID(ctx context.Context, userID string) ([]models.DecisionLogEntry, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, decision_type, reasoning, action_taken, created_at
		FROM decision_log
		WHERE user_id = ?
		ORDER BY id ASC
	`)
	var entries []models.DecisionLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get decision log: %w", err)
	}
	return entries, nil
}
