package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/remindagent/pkg/models"
)

// ErrStorageUnavailable wraps every failure of the persistence layer
var ErrStorageUnavailable = errors.New("behavior store unavailable")

// EventFilter narrows ListTaskEvents. A zero PendingAfter returns the full history.
type EventFilter struct {
	// PendingAfter keeps only unresolved events scheduled strictly after this time
	PendingAfter time.Time
}

// BehaviorStore is the durable record of task events, decisions and learned preferences.
// All writes are durable before the call returns.
type BehaviorStore interface {
	AppendTaskEvent(ctx context.Context, userID, taskName string, scheduledTime time.Time) (int64, error)
	ImportTaskEvent(ctx context.Context, event *models.TaskEvent) (int64, error)
	ListTaskEvents(ctx context.Context, userID string, filter EventFilter) ([]models.TaskEvent, error)
	ListUnresolvedAfter(ctx context.Context, after time.Time) ([]models.TaskEvent, error)
	ResolveTaskEvent(ctx context.Context, userID, taskName string, status models.CompletionStatus, feedback string, completionTime time.Time) (bool, error)
	AppendDecisionLog(ctx context.Context, userID, decisionType, reasoning, action string) error
	GetOrCreatePreferenceProfile(ctx context.Context, userID string) (*models.PreferenceProfile, error)
	SavePreferenceProfile(ctx context.Context, profile *models.PreferenceProfile) error
	UpdatePreferenceProfile(ctx context.Context, userID string, mutate func(*models.PreferenceProfile)) (*models.PreferenceProfile, error)
	Close() error
}

func storageErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorageUnavailable, err)
}
