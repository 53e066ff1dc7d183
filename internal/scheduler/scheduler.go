package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/remindagent/internal/metrics"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

var (
	// ErrJobNotFound is returned when cancelling a job that is not pending
	ErrJobNotFound = errors.New("reminder job not found")
	// ErrPastTime is returned when a reminder would fire in the past
	ErrPastTime = errors.New("reminder time must be in the future")
)

// JobTag is the gocron tag of the reminder job for a task event
func JobTag(eventID int64) string {
	return fmt.Sprintf("reminder_%d", eventID)
}

// Scheduler runs fire-once reminder jobs keyed by task event id
type Scheduler struct {
	scheduler *gocron.Scheduler
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics

	mu      sync.Mutex
	pending map[int64]time.Time
}

// New creates a scheduler whose jobs are evaluated in loc
func New(loc *time.Location, logger *zap.Logger, m *metrics.Metrics) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	s := gocron.NewScheduler(loc)
	s.TagsUnique()
	return &Scheduler{
		scheduler: s,
		now:       time.Now,
		logger:    logger,
		metrics:   m,
		pending:   make(map[int64]time.Time),
	}
}

// Schedule registers fn to run once at the given time. An existing job for
// the same event is replaced.
func (s *Scheduler) Schedule(eventID int64, at time.Time, fn func()) error {
	if !at.After(s.now()) {
		return ErrPastTime
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tag := JobTag(eventID)
	if _, ok := s.pending[eventID]; ok {
		_ = s.scheduler.RemoveByTag(tag)
		delete(s.pending, eventID)
	}

	_, err := s.scheduler.Every(1).Day().StartAt(at).LimitRunsTo(1).Tag(tag).Do(func() {
		if !s.take(eventID) {
			return
		}
		s.metrics.Job("fired")
		s.logger.Info("reminder job fired", zap.Int64("event_id", eventID))
		fn()
	})
	if err != nil {
		s.metrics.Job("failed")
		return fmt.Errorf("failed to schedule reminder %d: %w", eventID, err)
	}

	s.pending[eventID] = at
	s.metrics.Job("scheduled")
	s.logger.Debug("reminder job scheduled",
		zap.Int64("event_id", eventID),
		zap.Time("at", at))
	return nil
}

// take removes the job from the pending set; false means it was cancelled
func (s *Scheduler) take(eventID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[eventID]; !ok {
		return false
	}
	delete(s.pending, eventID)
	return true
}

// Cancel removes a pending reminder job
func (s *Scheduler) Cancel(eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[eventID]; !ok {
		return fmt.Errorf("%w: %d", ErrJobNotFound, eventID)
	}
	delete(s.pending, eventID)
	if err := s.scheduler.RemoveByTag(JobTag(eventID)); err != nil {
		s.logger.Warn("failed to remove reminder job", zap.Int64("event_id", eventID), zap.Error(err))
	}
	s.metrics.Job("canceled")
	return nil
}

// Pending reports when the event's reminder will fire, if it is still scheduled
func (s *Scheduler) Pending(eventID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.pending[eventID]
	return at, ok
}

// Len returns the number of pending reminder jobs
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Start begins running scheduled jobs in the background
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates the scheduler; pending jobs do not fire
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
