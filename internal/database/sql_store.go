package database

import (
	"context"
	"time"

	"github.com/example/remindagent/pkg/models"
	"github.com/jmoiron/sqlx"
)

// SQLStore is the sqlx-backed BehaviorStore used with SQLite and Postgres
type SQLStore struct {
	db          *sqlx.DB
	events      *TaskEventRepository
	decisions   *DecisionLogRepository
	preferences *PreferenceRepository
	locks       *userLocks
	now         func() time.Time
}

// NewSQLStore wraps an open connection whose schema is already initialised
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db:          db,
		events:      NewTaskEventRepository(db),
		decisions:   NewDecisionLogRepository(db),
		preferences: NewPreferenceRepository(db),
		locks:       newUserLocks(),
		now:         time.Now,
	}
}

// AppendTaskEvent records a newly scheduled task
func (s *SQLStore) AppendTaskEvent(ctx context.Context, userID, taskName string, scheduledTime time.Time) (int64, error) {
	event := &models.TaskEvent{
		UserID:           userID,
		TaskName:         taskName,
		ScheduledTime:    scheduledTime,
		CompletionStatus: models.StatusPending,
		CreatedAt:        s.now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return 0, storageErr("append task event", err)
	}
	return event.ID, nil
}

// ImportTaskEvent appends a fully specified historical event
func (s *SQLStore) ImportTaskEvent(ctx context.Context, event *models.TaskEvent) (int64, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	if err := s.events.Create(ctx, event); err != nil {
		return 0, storageErr("import task event", err)
	}
	return event.ID, nil
}

// ListTaskEvents returns the user's events, most recently created first
func (s *SQLStore) ListTaskEvents(ctx context.Context, userID string, filter EventFilter) ([]models.TaskEvent, error) {
	var (
		events []models.TaskEvent
		err    error
	)
	if filter.PendingAfter.IsZero() {
		events, err = s.events.GetByUserID(ctx, userID)
	} else {
		events, err = s.events.GetPendingAfter(ctx, userID, filter.PendingAfter)
	}
	if err != nil {
		return nil, storageErr("list task events", err)
	}
	return events, nil
}

// ListUnresolvedAfter returns all users' unresolved events scheduled after t
func (s *SQLStore) ListUnresolvedAfter(ctx context.Context, after time.Time) ([]models.TaskEvent, error) {
	events, err := s.events.GetUnresolvedAfter(ctx, after)
	if err != nil {
		return nil, storageErr("list unresolved task events", err)
	}
	return events, nil
}

// ResolveTaskEvent resolves the most recent unresolved match; false means nothing matched
func (s *SQLStore) ResolveTaskEvent(ctx context.Context, userID, taskName string, status models.CompletionStatus, feedback string, completionTime time.Time) (bool, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	resolved, err := s.events.ResolveLatest(ctx, userID, taskName, status, feedback, completionTime)
	if err != nil {
		return false, storageErr("resolve task event", err)
	}
	return resolved, nil
}

// AppendDecisionLog writes one audit entry
func (s *SQLStore) AppendDecisionLog(ctx context.Context, userID, decisionType, reasoning, action string) error {
	entry := &models.DecisionLogEntry{
		UserID:       userID,
		DecisionType: decisionType,
		Reasoning:    reasoning,
		ActionTaken:  action,
		CreatedAt:    s.now(),
	}
	if err := s.decisions.Create(ctx, entry); err != nil {
		return storageErr("append decision log", err)
	}
	return nil
}

// DecisionLog returns the user's audit trail in insertion order
func (s *SQLStore) DecisionLog(ctx context.Context, userID string) ([]models.DecisionLogEntry, error) {
	entries, err := s.decisions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storageErr("read decision log", err)
	}
	return entries, nil
}

// GetOrCreatePreferenceProfile loads the user's profile, creating it lazily
func (s *SQLStore) GetOrCreatePreferenceProfile(ctx context.Context, userID string) (*models.PreferenceProfile, error) {
	profile, err := s.preferences.GetOrCreate(ctx, userID, s.now())
	if err != nil {
		return nil, storageErr("load preference profile", err)
	}
	return profile, nil
}

// SavePreferenceProfile persists the profile, creating the row if needed
func (s *SQLStore) SavePreferenceProfile(ctx context.Context, profile *models.PreferenceProfile) error {
	unlock := s.locks.lock(profile.UserID)
	defer unlock()
	return s.savePreferenceProfile(ctx, profile)
}

func (s *SQLStore) savePreferenceProfile(ctx context.Context, profile *models.PreferenceProfile) error {
	if _, err := s.preferences.GetOrCreate(ctx, profile.UserID, s.now()); err != nil {
		return storageErr("save preference profile", err)
	}
	if err := s.preferences.Update(ctx, profile); err != nil {
		return storageErr("save preference profile", err)
	}
	return nil
}

// UpdatePreferenceProfile applies mutate to the stored profile under the user's lock
func (s *SQLStore) UpdatePreferenceProfile(ctx context.Context, userID string, mutate func(*models.PreferenceProfile)) (*models.PreferenceProfile, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	profile, err := s.preferences.GetOrCreate(ctx, userID, s.now())
	if err != nil {
		return nil, storageErr("load preference profile", err)
	}
	mutate(profile)
	if err := s.preferences.Update(ctx, profile); err != nil {
		return nil, storageErr("save preference profile", err)
	}
	return profile, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}
