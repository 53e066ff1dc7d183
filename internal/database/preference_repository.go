package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/remindagent/pkg/models"
	"github.com/jmoiron/sqlx"
)

// preferenceRow stores the structured profile fields as JSON text
type preferenceRow struct {
	ID                   int64          `db:"id"`
	UserID               string         `db:"user_id"`
	PreferredTimes       sql.NullString `db:"preferred_times"`
	TaskCategories       sql.NullString `db:"task_categories"`
	ProductivityPatterns sql.NullString `db:"productivity_patterns"`
	LastUpdated          time.Time      `db:"last_updated"`
}

func (r preferenceRow) toModel() (*models.PreferenceProfile, error) {
	profile := models.NewPreferenceProfile(r.UserID)
	profile.ID = r.ID
	profile.LastUpdated = r.LastUpdated

	if err := decodeJSONColumn(r.PreferredTimes, &profile.PreferredTimes); err != nil {
		return nil, fmt.Errorf("failed to decode preferred_times: %w", err)
	}
	if err := decodeJSONColumn(r.TaskCategories, &profile.TaskCategories); err != nil {
		return nil, fmt.Errorf("failed to decode task_categories: %w", err)
	}
	if err := decodeJSONColumn(r.ProductivityPatterns, &profile.ProductivityPatterns); err != nil {
		return nil, fmt.Errorf("failed to decode productivity_patterns: %w", err)
	}
	return profile, nil
}

func decodeJSONColumn(col sql.NullString, dst interface{}) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func encodeJSONColumn(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PreferenceRepository handles database operations for preference profiles
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository creates a new repository instance
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUserID returns the user's profile, or nil when none exists
func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID string) (*models.PreferenceProfile, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, preferred_times, task_categories, productivity_patterns, last_updated
		FROM preference_profiles
		WHERE user_id = ?
	`)
	var row preferenceRow
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference profile: %w", err)
	}
	return row.toModel()
}

// Create inserts an empty profile. A concurrent insert for the same user is not an error.
func (r *PreferenceRepository) Create(ctx context.Context, profile *models.PreferenceProfile) error {
	preferred, categories, patterns, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`
		INSERT INTO preference_profiles (
			user_id, preferred_times, task_categories, productivity_patterns, last_updated
		) VALUES (?, ?, ?, ?, ?)
	`)
	_, err = r.db.ExecContext(ctx, query,
		profile.UserID,
		preferred,
		categories,
		patterns,
		profile.LastUpdated.UTC(),
	)
	if err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("failed to create preference profile: %w", err)
	}
	return nil
}

// GetOrCreate returns the user's profile, creating an empty one on first use
func (r *PreferenceRepository) GetOrCreate(ctx context.Context, userID string, now time.Time) (*models.PreferenceProfile, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil || profile != nil {
		return profile, err
	}

	profile = models.NewPreferenceProfile(userID)
	profile.LastUpdated = now
	if err := r.Create(ctx, profile); err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

// Update persists every mutable column of the profile
func (r *PreferenceRepository) Update(ctx context.Context, profile *models.PreferenceProfile) error {
	preferred, categories, patterns, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`
		UPDATE preference_profiles SET
			preferred_times = ?,
			task_categories = ?,
			productivity_patterns = ?,
			last_updated = ?
		WHERE user_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		preferred,
		categories,
		patterns,
		profile.LastUpdated.UTC(),
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update preference profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("preference profile for %q not found", profile.UserID)
	}
	return nil
}

func encodeProfile(profile *models.PreferenceProfile) (preferred, categories, patterns string, err error) {
	if preferred, err = encodeJSONColumn(profile.PreferredTimes); err != nil {
		return "", "", "", fmt.Errorf("failed to encode preferred_times: %w", err)
	}
	if categories, err = encodeJSONColumn(profile.TaskCategories); err != nil {
		return "", "", "", fmt.Errorf("failed to encode task_categories: %w", err)
	}
	if patterns, err = encodeJSONColumn(profile.ProductivityPatterns); err != nil {
		return "", "", "", fmt.Errorf("failed to encode productivity_patterns: %w", err)
	}
	return preferred, categories, patterns, nil
}
