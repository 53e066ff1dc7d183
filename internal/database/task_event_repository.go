package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/remindagent/pkg/models"
	"github.com/jmoiron/sqlx"
)

// taskEventRow mirrors the task_events table; NULL status means unresolved
type taskEventRow struct {
	ID               int64          `db:"id"`
	UserID           string         `db:"user_id"`
	TaskName         string         `db:"task_name"`
	ScheduledTime    time.Time      `db:"scheduled_time"`
	CompletionTime   sql.NullTime   `db:"completion_time"`
	CompletionStatus sql.NullString `db:"completion_status"`
	Feedback         sql.NullString `db:"feedback"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (r taskEventRow) toModel() models.TaskEvent {
	event := models.TaskEvent{
		ID:               r.ID,
		UserID:           r.UserID,
		TaskName:         r.TaskName,
		ScheduledTime:    r.ScheduledTime,
		CompletionStatus: models.StatusPending,
		Feedback:         r.Feedback.String,
		CreatedAt:        r.CreatedAt,
	}
	if r.CompletionStatus.Valid {
		event.CompletionStatus = models.CompletionStatus(r.CompletionStatus.String)
	}
	if r.CompletionTime.Valid {
		t := r.CompletionTime.Time
		event.CompletionTime = &t
	}
	return event
}

const taskEventColumns = `id, user_id, task_name, scheduled_time, completion_time,
	completion_status, feedback, created_at`

// TaskEventRepository handles database operations for task events
type TaskEventRepository struct {
	db *sqlx.DB
}

// NewTaskEventRepository creates a new repository instance
func NewTaskEventRepository(db *sqlx.DB) *TaskEventRepository {
	return &TaskEventRepository{db: db}
}

// Create inserts a new task event and assigns its ID
func (r *TaskEventRepository) Create(ctx context.Context, event *models.TaskEvent) error {
	query := r.db.Rebind(`
		INSERT INTO task_events (
			user_id, task_name, scheduled_time, completion_time,
			completion_status, feedback, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var status sql.NullString
	if event.Resolved() {
		status = sql.NullString{String: string(event.CompletionStatus), Valid: true}
	}
	var completion sql.NullTime
	if event.CompletionTime != nil {
		completion = sql.NullTime{Time: event.CompletionTime.UTC(), Valid: true}
	}
	var feedback sql.NullString
	if event.Feedback != "" {
		feedback = sql.NullString{String: event.Feedback, Valid: true}
	}

	err := r.db.QueryRowxContext(ctx, query,
		event.UserID,
		event.TaskName,
		event.ScheduledTime.UTC(),
		completion,
		status,
		feedback,
		event.CreatedAt.UTC(),
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to create task event: %w", err)
	}
	return nil
}

// GetByUserID returns all events for a user, most recently created first
func (r *TaskEventRepository) GetByUserID(ctx context.Context, userID string) ([]models.TaskEvent, error) {
	query := r.db.Rebind(`
		SELECT ` + taskEventColumns + `
		FROM task_events
		WHERE user_id = ?
		ORDER BY id DESC
	`)
	return r.selectEvents(ctx, query, userID)
}

// GetPendingAfter returns the user's unresolved events scheduled after t
func (r *TaskEventRepository) GetPendingAfter(ctx context.Context, userID string, t time.Time) ([]models.TaskEvent, error) {
	query := r.db.Rebind(`
		SELECT ` + taskEventColumns + `
		FROM task_events
		WHERE user_id = ? AND scheduled_time > ? AND completion_status IS NULL
		ORDER BY id DESC
	`)
	return r.selectEvents(ctx, query, userID, t.UTC())
}

// GetUnresolvedAfter returns every user's unresolved events scheduled after t, soonest first
func (r *TaskEventRepository) GetUnresolvedAfter(ctx context.Context, t time.Time) ([]models.TaskEvent, error) {
	query := r.db.Rebind(`
		SELECT ` + taskEventColumns + `
		FROM task_events
		WHERE scheduled_time > ? AND completion_status IS NULL
		ORDER BY scheduled_time ASC, id ASC
	`)
	return r.selectEvents(ctx, query, t.UTC())
}

// ResolveLatest marks the most recently created unresolved event for
// (userID, taskName). The status guard makes concurrent resolutions first-writer-wins.
func (r *TaskEventRepository) ResolveLatest(ctx context.Context, userID, taskName string, status models.CompletionStatus, feedback string, completionTime time.Time) (bool, error) {
	query := r.db.Rebind(`
		UPDATE task_events SET
			completion_status = ?,
			feedback = ?,
			completion_time = ?
		WHERE id = (
			SELECT id FROM task_events
			WHERE user_id = ? AND task_name = ? AND completion_status IS NULL
			ORDER BY id DESC
			LIMIT 1
		) AND completion_status IS NULL
	`)

	var fb sql.NullString
	if feedback != "" {
		fb = sql.NullString{String: feedback, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		string(status),
		fb,
		completionTime.UTC(),
		userID,
		taskName,
	)
	if err != nil {
		return false, fmt.Errorf("failed to resolve task event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *TaskEventRepository) selectEvents(ctx context.Context, query string, args ...interface{}) ([]models.TaskEvent, error) {
	var rows []taskEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get task events: %w", err)
	}
	events := make([]models.TaskEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toModel())
	}
	return events, nil
}
