package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/internal/database"
	"github.com/example/remindagent/internal/metrics"
	"github.com/example/remindagent/pkg/models"
	"go.uber.org/zap"
)

// Store is the part of the behavior store the engine reads and writes
type Store interface {
	ListTaskEvents(ctx context.Context, userID string, filter database.EventFilter) ([]models.TaskEvent, error)
	AppendDecisionLog(ctx context.Context, userID, decisionType, reasoning, action string) error
}

// ProfileSource computes the current profile of a user
type ProfileSource interface {
	Analyze(ctx context.Context, userID string) (models.UserProfile, error)
}

// Reasoner evaluates a scheduled task through the external reasoning service
type Reasoner interface {
	Decide(ctx context.Context, req ai.DecisionRequest) ai.Result[ai.DecisionAdvice]
}

// Engine produces scheduling decisions for tasks
type Engine struct {
	store    Store
	profiles ProfileSource
	reasoner Reasoner
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates an Engine. reasoner may wrap a nil *ai.Client.
func New(store Store, profiles ProfileSource, reasoner Reasoner, loc *time.Location, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		store:    store,
		profiles: profiles,
		reasoner: reasoner,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
		metrics:  m,
	}
}

// WithClock replaces the time source
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Decide evaluates a task scheduled at the given time and records the decision
func (e *Engine) Decide(ctx context.Context, userID, taskName string, scheduledTime time.Time) (*models.Decision, error) {
	profile, err := e.profiles.Analyze(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze user patterns: %w", err)
	}
	return e.DecideFor(ctx, userID, taskName, scheduledTime, profile)
}

// DecideFor evaluates a task using an already computed profile snapshot
func (e *Engine) DecideFor(ctx context.Context, userID, taskName string, scheduledTime time.Time, profile models.UserProfile) (*models.Decision, error) {
	pending, err := e.store.ListTaskEvents(ctx, userID, database.EventFilter{PendingAfter: e.now()})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	hour := scheduledTime.In(e.loc).Hour()

	decision := Baseline(len(pending), profile, hour)

	res := e.reasoner.Decide(ctx, ai.DecisionRequest{
		TaskName:      taskName,
		ScheduledTime: scheduledTime.In(e.loc),
		Profile:       profile,
		PendingTasks:  len(pending),
	})
	if res.OK() {
		overlay(decision, fromAdvice(res.Value))
		enforce(decision, len(pending), hour)
		if decision.Reasoning == "" {
			decision.Reasoning = advisedReasoning
		}
	} else {
		overlay(decision, Heuristic(len(pending), profile, hour))
		if decision.Reasoning == "" {
			decision.Reasoning = defaultReasoning
		}
	}

	action, err := json.Marshal(decision)
	if err != nil {
		return nil, fmt.Errorf("failed to encode decision: %v", err)
	}
	// the audit trail never fails the decision itself
	if err := e.store.AppendDecisionLog(ctx, userID, models.DecisionTaskScheduling, decision.Reasoning, string(action)); err != nil {
		e.metrics.DecisionLogFailure(models.DecisionTaskScheduling)
		e.logger.Warn("failed to log decision",
			zap.String("user_id", userID),
			zap.String("task", taskName),
			zap.Error(err))
	}

	e.metrics.Decision(string(decision.PriorityLevel), decision.ShouldReschedule)
	e.logger.Info("task decision made",
		zap.String("user_id", userID),
		zap.String("task", taskName),
		zap.Int("pending", len(pending)),
		zap.String("priority", string(decision.PriorityLevel)),
		zap.Bool("should_reschedule", decision.ShouldReschedule),
		zap.Bool("advised", res.OK()))

	return decision, nil
}

// fromAdvice converts a validated service answer into an overlay.
// Lists the service left out stay nil.
func fromAdvice(a ai.DecisionAdvice) *models.Decision {
	return &models.Decision{
		ShouldReschedule: *a.ShouldReschedule,
		PriorityLevel:    a.Priority(),
		SuggestedBreaks:  a.SuggestedBreaks,
		ProductivityTips: a.ProductivityTips,
		TaskOptimization: a.TaskOptimization,
	}
}

// overlay copies the augmentation onto the baseline. The augmentation wins on
// priority and rescheduling; nil lists and an empty optimization keep the baseline.
func overlay(base, aug *models.Decision) {
	base.ShouldReschedule = aug.ShouldReschedule
	base.PriorityLevel = aug.PriorityLevel
	if aug.SuggestedBreaks != nil {
		base.SuggestedBreaks = append([]string{}, aug.SuggestedBreaks...)
	}
	if aug.ProductivityTips != nil {
		base.ProductivityTips = append([]string{}, aug.ProductivityTips...)
	}
	if aug.TaskOptimization != "" {
		base.TaskOptimization = aug.TaskOptimization
	}
}

// enforce restores the overload and afternoon guarantees a service answer may have dropped
func enforce(d *models.Decision, pending, hour int) {
	if pending > OverloadThreshold {
		d.ShouldReschedule = true
		if d.Reasoning == "" {
			d.Reasoning = overloadReasoning
		}
	}
	if hour >= AfternoonHour && len(d.SuggestedBreaks) == 0 {
		d.SuggestedBreaks = append(d.SuggestedBreaks, afternoonBreak)
	}
}
