package database

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/remindagent/pkg/models"
)

// MemoryStore is a process-local BehaviorStore. Each user owns an arena of
// events in creation order plus, per task name, a stack of the arena indices
// still unresolved, so the most recent unresolved match is found in O(1).
type MemoryStore struct {
	mu     sync.RWMutex
	arenas map[string]*arena

	eventSeq    atomic.Int64
	decisionSeq atomic.Int64
	profileSeq  atomic.Int64

	now func() time.Time
}

type arena struct {
	mu         sync.Mutex
	events     []models.TaskEvent
	unresolved map[string][]int
	decisions  []models.DecisionLogEntry
	profile    *models.PreferenceProfile
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		arenas: make(map[string]*arena),
		now:    time.Now,
	}
}

func (s *MemoryStore) arena(userID string) *arena {
	s.mu.RLock()
	a, ok := s.arenas[userID]
	s.mu.RUnlock()
	if ok {
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok = s.arenas[userID]; !ok {
		a = &arena{unresolved: make(map[string][]int)}
		s.arenas[userID] = a
	}
	return a
}

func (s *MemoryStore) existing(userID string) *arena {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arenas[userID]
}

// AppendTaskEvent records a newly scheduled task
func (s *MemoryStore) AppendTaskEvent(ctx context.Context, userID, taskName string, scheduledTime time.Time) (int64, error) {
	return s.ImportTaskEvent(ctx, &models.TaskEvent{
		UserID:           userID,
		TaskName:         taskName,
		ScheduledTime:    scheduledTime,
		CompletionStatus: models.StatusPending,
	})
}

// ImportTaskEvent appends a fully specified event
func (s *MemoryStore) ImportTaskEvent(ctx context.Context, event *models.TaskEvent) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, storageErr("append task event", err)
	}
	a := s.arena(event.UserID)
	a.mu.Lock()
	defer a.mu.Unlock()

	event.ID = s.eventSeq.Add(1)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	if event.CompletionStatus == "" {
		event.CompletionStatus = models.StatusPending
	}
	a.events = append(a.events, *event)
	if !event.Resolved() {
		a.unresolved[event.TaskName] = append(a.unresolved[event.TaskName], len(a.events)-1)
	}
	return event.ID, nil
}

// ListTaskEvents returns the user's events, most recently created first
func (s *MemoryStore) ListTaskEvents(ctx context.Context, userID string, filter EventFilter) ([]models.TaskEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list task events", err)
	}
	a := s.existing(userID)
	if a == nil {
		return []models.TaskEvent{}, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	events := make([]models.TaskEvent, 0, len(a.events))
	for i := len(a.events) - 1; i >= 0; i-- {
		e := a.events[i]
		if !filter.PendingAfter.IsZero() && (e.Resolved() || !e.ScheduledTime.After(filter.PendingAfter)) {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// ListUnresolvedAfter returns all users' unresolved events scheduled after t, soonest first
func (s *MemoryStore) ListUnresolvedAfter(ctx context.Context, after time.Time) ([]models.TaskEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list unresolved task events", err)
	}
	s.mu.RLock()
	arenas := make([]*arena, 0, len(s.arenas))
	for _, a := range s.arenas {
		arenas = append(arenas, a)
	}
	s.mu.RUnlock()

	var events []models.TaskEvent
	for _, a := range arenas {
		a.mu.Lock()
		for _, e := range a.events {
			if !e.Resolved() && e.ScheduledTime.After(after) {
				events = append(events, e)
			}
		}
		a.mu.Unlock()
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].ScheduledTime.Equal(events[j].ScheduledTime) {
			return events[i].ID < events[j].ID
		}
		return events[i].ScheduledTime.Before(events[j].ScheduledTime)
	})
	return events, nil
}

// ResolveTaskEvent resolves the most recent unresolved match; false means nothing matched
func (s *MemoryStore) ResolveTaskEvent(ctx context.Context, userID, taskName string, status models.CompletionStatus, feedback string, completionTime time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storageErr("resolve task event", err)
	}
	a := s.existing(userID)
	if a == nil {
		return false, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	stack := a.unresolved[taskName]
	if len(stack) == 0 {
		return false, nil
	}
	idx := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(a.unresolved, taskName)
	} else {
		a.unresolved[taskName] = stack[:len(stack)-1]
	}

	ct := completionTime
	event := &a.events[idx]
	event.CompletionStatus = status
	event.Feedback = feedback
	event.CompletionTime = &ct
	return true, nil
}

// AppendDecisionLog writes one audit entry
func (s *MemoryStore) AppendDecisionLog(ctx context.Context, userID, decisionType, reasoning, action string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("append decision log", err)
	}
	a := s.arena(userID)
	a.mu.Lock()
	defer a.mu.Unlock()

	a.decisions = append(a.decisions, models.DecisionLogEntry{
		ID:           s.decisionSeq.Add(1),
		UserID:       userID,
		DecisionType: decisionType,
		Reasoning:    reasoning,
		ActionTaken:  action,
		CreatedAt:    s.now(),
	})
	return nil
}

// DecisionLog returns the user's audit trail in insertion order
func (s *MemoryStore) DecisionLog(ctx context.Context, userID string) ([]models.DecisionLogEntry, error) {
	a := s.existing(userID)
	if a == nil {
		return []models.DecisionLogEntry{}, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.DecisionLogEntry{}, a.decisions...), nil
}

// GetOrCreatePreferenceProfile loads the user's profile, creating it lazily
func (s *MemoryStore) GetOrCreatePreferenceProfile(ctx context.Context, userID string) (*models.PreferenceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("load preference profile", err)
	}
	a := s.arena(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return s.profileLocked(a, userID).Clone(), nil
}

// SavePreferenceProfile replaces the stored profile
func (s *MemoryStore) SavePreferenceProfile(ctx context.Context, profile *models.PreferenceProfile) error {
	if err := ctx.Err(); err != nil {
		return storageErr("save preference profile", err)
	}
	a := s.arena(profile.UserID)
	a.mu.Lock()
	defer a.mu.Unlock()

	stored := profile.Clone()
	stored.ID = s.profileLocked(a, profile.UserID).ID
	a.profile = stored
	return nil
}

// UpdatePreferenceProfile applies mutate to the stored profile under the user's lock
func (s *MemoryStore) UpdatePreferenceProfile(ctx context.Context, userID string, mutate func(*models.PreferenceProfile)) (*models.PreferenceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("update preference profile", err)
	}
	a := s.arena(userID)
	a.mu.Lock()
	defer a.mu.Unlock()

	profile := s.profileLocked(a, userID).Clone()
	mutate(profile)
	a.profile = profile.Clone()
	return profile, nil
}

func (s *MemoryStore) profileLocked(a *arena, userID string) *models.PreferenceProfile {
	if a.profile == nil {
		a.profile = models.NewPreferenceProfile(userID)
		a.profile.ID = s.profileSeq.Add(1)
		a.profile.LastUpdated = s.now()
	}
	return a.profile
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
