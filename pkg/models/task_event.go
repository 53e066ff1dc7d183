package models

import (
	"fmt"
	"strings"
	"time"
)

// CompletionStatus is the lifecycle state of a scheduled task
type CompletionStatus string

const (
	// StatusPending marks an event that has not been resolved yet (stored as NULL)
	StatusPending   CompletionStatus = "pending"
	StatusCompleted CompletionStatus = "completed"
	StatusFailed    CompletionStatus = "failed"
	StatusSkipped   CompletionStatus = "skipped"
)

// ParseOutcome validates a reported task outcome. Pending is not an outcome.
func ParseOutcome(s string) (CompletionStatus, error) {
	switch CompletionStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusFailed:
		return StatusFailed, nil
	case StatusSkipped:
		return StatusSkipped, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
}

// TaskEvent is one scheduled task instance
type TaskEvent struct {
	ID               int64            `json:"id" db:"id"`
	UserID           string           `json:"user_id" db:"user_id"`
	TaskName         string           `json:"task_name" db:"task_name"`
	ScheduledTime    time.Time        `json:"scheduled_time" db:"scheduled_time"`
	CompletionTime   *time.Time       `json:"completion_time,omitempty" db:"completion_time"`
	CompletionStatus CompletionStatus `json:"completion_status" db:"completion_status"`
	Feedback         string           `json:"feedback,omitempty" db:"feedback"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// Resolved reports whether an outcome has been recorded for the event
func (e *TaskEvent) Resolved() bool {
	return e.CompletionStatus != "" && e.CompletionStatus != StatusPending
}
