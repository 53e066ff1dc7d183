package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/example/remindagent/internal/metrics"
	"github.com/example/remindagent/pkg/models"
	"go.uber.org/zap"
)

// Store is the part of the behavior store the loop mutates
type Store interface {
	ResolveTaskEvent(ctx context.Context, userID, taskName string, status models.CompletionStatus, feedback string, completionTime time.Time) (bool, error)
	UpdatePreferenceProfile(ctx context.Context, userID string, mutate func(*models.PreferenceProfile)) (*models.PreferenceProfile, error)
}

// Loop feeds reported outcomes back into the stored history and preference profile
type Loop struct {
	store   Store
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a learning loop
func New(store Store, logger *zap.Logger, m *metrics.Metrics) *Loop {
	return &Loop{
		store:   store,
		now:     time.Now,
		logger:  logger,
		metrics: m,
	}
}

// WithClock replaces the time source
func (l *Loop) WithClock(now func() time.Time) *Loop {
	l.now = now
	return l
}

// RecordOutcome resolves the most recent unresolved event for the task and
// files the task name under the matching preference list. A missing event is
// not an error; the profile is updated either way.
func (l *Loop) RecordOutcome(ctx context.Context, userID, taskName string, outcome models.CompletionStatus, feedback string) (*models.PreferenceProfile, error) {
	if _, err := models.ParseOutcome(string(outcome)); err != nil {
		return nil, err
	}
	now := l.now()

	resolved, err := l.store.ResolveTaskEvent(ctx, userID, taskName, outcome, feedback, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve task event: %w", err)
	}
	if !resolved {
		l.logger.Info("no unresolved task event to resolve",
			zap.String("user_id", userID),
			zap.String("task", taskName))
	}

	profile, err := l.store.UpdatePreferenceProfile(ctx, userID, func(p *models.PreferenceProfile) {
		if outcome == models.StatusCompleted {
			p.TaskCategories.SuccessfulTasks = append(p.TaskCategories.SuccessfulTasks, taskName)
		} else {
			p.TaskCategories.ChallengingTasks = append(p.TaskCategories.ChallengingTasks, taskName)
		}
		p.LastUpdated = now
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update preference profile: %w", err)
	}

	l.metrics.Outcome(string(outcome))
	l.logger.Info("outcome recorded",
		zap.String("user_id", userID),
		zap.String("task", taskName),
		zap.String("outcome", string(outcome)),
		zap.Bool("resolved", resolved))

	return profile, nil
}
