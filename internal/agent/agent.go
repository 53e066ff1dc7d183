package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/internal/analyzer"
	"github.com/example/remindagent/internal/database"
	"github.com/example/remindagent/internal/decision"
	"github.com/example/remindagent/internal/insights"
	"github.com/example/remindagent/internal/learning"
	"github.com/example/remindagent/internal/metrics"
	"github.com/example/remindagent/internal/notify"
	"github.com/example/remindagent/internal/parser"
	"github.com/example/remindagent/internal/suggester"
	"github.com/example/remindagent/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reminderTimeout bounds the work done when a reminder job fires
const reminderTimeout = 30 * time.Second

// ErrNotFuture is returned when a task is scheduled at or before the current time
var ErrNotFuture = errors.New("scheduled time must be in the future")

// Jobs registers fire-once reminder jobs
type Jobs interface {
	Schedule(eventID int64, at time.Time, fn func()) error
	Cancel(eventID int64) error
}

// Options wires an Agent. Client, Jobs and Notifier may be nil.
type Options struct {
	Store    database.BehaviorStore
	Client   *ai.Client
	Jobs     Jobs
	Notifier notify.Notifier
	Location *time.Location
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	// Now overrides the clock of every component
	Now func() time.Time
}

// ScheduledTask is the result of scheduling a task
type ScheduledTask struct {
	EventID       int64            `json:"event_id"`
	TaskName      string           `json:"task_name"`
	ScheduledTime string           `json:"scheduled_time"`
	Decision      *models.Decision `json:"decision"`
}

// Agent is the caller-facing surface of the reminder decision engine
type Agent struct {
	store     database.BehaviorStore
	client    *ai.Client
	analyzer  *analyzer.Analyzer
	suggester *suggester.Suggester
	engine    *decision.Engine
	learning  *learning.Loop
	insights  *insights.Service
	parser    *parser.Parser
	jobs      Jobs
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// New builds the agent and its components around a shared store and reasoning client
func New(opts Options) *Agent {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLog(opts.Logger)
	}

	an := analyzer.New(opts.Store, opts.Location)
	sug := suggester.New(an, opts.Client, opts.Location, opts.Logger).WithClock(opts.Now)

	return &Agent{
		store:     opts.Store,
		client:    opts.Client,
		analyzer:  an,
		suggester: sug,
		engine:    decision.New(opts.Store, an, opts.Client, opts.Location, opts.Logger, opts.Metrics).WithClock(opts.Now),
		learning:  learning.New(opts.Store, opts.Logger, opts.Metrics).WithClock(opts.Now),
		insights:  insights.New(an, opts.Client, opts.Logger),
		parser:    parser.New(opts.Client, sug, opts.Location, opts.Logger).WithClock(opts.Now),
		jobs:      opts.Jobs,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		loc:       opts.Location,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

func (a *Agent) requestLogger(op, userID string) *zap.Logger {
	return a.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("operation", op),
		zap.String("user_id", userID))
}

// AnalyzeUser summarises the user's task history
func (a *Agent) AnalyzeUser(ctx context.Context, userID string) (models.UserProfile, error) {
	log := a.requestLogger("analyze_user", userID)
	profile, err := a.analyzer.Analyze(ctx, userID)
	if err != nil {
		log.Error("failed to analyze user", zap.Error(err))
		return models.UserProfile{}, fmt.Errorf("failed to analyze user: %w", err)
	}
	log.Debug("user analyzed", zap.String("status", string(profile.Status)), zap.Int("total_tasks", profile.TotalTasks))
	return profile, nil
}

// SuggestTime proposes when to schedule a task. hint may be empty.
func (a *Agent) SuggestTime(ctx context.Context, userID, taskName, hint string) (models.Suggestion, error) {
	log := a.requestLogger("suggest_time", userID)
	s, err := a.suggester.Suggest(ctx, userID, taskName, hint)
	if err != nil {
		log.Error("failed to suggest time", zap.Error(err))
		return models.Suggestion{}, err
	}
	log.Debug("time suggested", zap.String("task", taskName), zap.Float64("confidence", s.Confidence))
	return s, nil
}

// Decide evaluates a task at scheduledTime ("YYYY-MM-DD HH:MM")
func (a *Agent) Decide(ctx context.Context, userID, taskName, scheduledTime string) (*models.Decision, error) {
	at, err := models.ParseInputTime(scheduledTime, a.loc)
	if err != nil {
		return nil, err
	}
	log := a.requestLogger("decide", userID)
	d, err := a.engine.Decide(ctx, userID, taskName, at)
	if err != nil {
		log.Error("failed to decide", zap.Error(err))
		return nil, err
	}
	return d, nil
}

// RecordOutcome feeds a reported outcome (completed, failed or skipped) back into the store
func (a *Agent) RecordOutcome(ctx context.Context, userID, taskName, outcome, feedback string) (*models.PreferenceProfile, error) {
	status, err := models.ParseOutcome(outcome)
	if err != nil {
		return nil, err
	}
	log := a.requestLogger("record_outcome", userID)
	profile, err := a.learning.RecordOutcome(ctx, userID, taskName, status, feedback)
	if err != nil {
		log.Error("failed to record outcome", zap.Error(err))
		return nil, err
	}
	return profile, nil
}

// Insights explains the user's productivity patterns
func (a *Agent) Insights(ctx context.Context, userID string) (models.Insights, error) {
	out, err := a.insights.Insights(ctx, userID)
	if err != nil {
		a.requestLogger("insights", userID).Error("failed to build insights", zap.Error(err))
	}
	return out, err
}

// TaskModifications suggests changes that make the task more likely to succeed
func (a *Agent) TaskModifications(ctx context.Context, userID, taskName, scheduledTime string) ([]string, error) {
	at, err := models.ParseInputTime(scheduledTime, a.loc)
	if err != nil {
		return nil, err
	}
	out, err := a.insights.TaskModifications(ctx, userID, taskName, at)
	if err != nil {
		a.requestLogger("task_modifications", userID).Error("failed to suggest modifications", zap.Error(err))
	}
	return out, err
}

// ParseRequest extracts a task and time from free-form text
func (a *Agent) ParseRequest(ctx context.Context, userID, text string) (models.ParsedRequest, error) {
	out, err := a.parser.Parse(ctx, userID, text)
	if err != nil {
		a.requestLogger("parse_request", userID).Error("failed to parse request", zap.Error(err))
	}
	return out, err
}
