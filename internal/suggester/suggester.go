package suggester

import (
	"context"
	"fmt"
	"time"

	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/pkg/models"
	"go.uber.org/zap"
)

// Fallback confidences, highest first
const (
	HintConfidence          = 0.8
	PreferredHourConfidence = 0.7
	DefaultConfidence       = 0.5

	// DefaultHour is used when nothing is known about the user
	DefaultHour = 9

	hintReasoning    = "using the user's stated preferred time"
	defaultReasoning = "Scheduled for tomorrow morning (9:00 AM) as a default time"
)

// ProfileSource computes the current profile of a user
type ProfileSource interface {
	Analyze(ctx context.Context, userID string) (models.UserProfile, error)
}

// Reasoner proposes a time through the external reasoning service
type Reasoner interface {
	SuggestTime(ctx context.Context, req ai.SuggestTimeRequest) ai.Result[ai.TimeSuggestion]
}

// Suggester recommends when a task should be scheduled
type Suggester struct {
	profiles ProfileSource
	reasoner Reasoner
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a Suggester. reasoner may wrap a nil *ai.Client.
func New(profiles ProfileSource, reasoner Reasoner, loc *time.Location, logger *zap.Logger) *Suggester {
	if loc == nil {
		loc = time.Local
	}
	return &Suggester{
		profiles: profiles,
		reasoner: reasoner,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source
func (s *Suggester) WithClock(now func() time.Time) *Suggester {
	s.now = now
	return s
}

// Suggest proposes a time for the task. Only storage failures are returned as errors.
func (s *Suggester) Suggest(ctx context.Context, userID, taskName, hint string) (models.Suggestion, error) {
	profile, err := s.profiles.Analyze(ctx, userID)
	if err != nil {
		return models.Suggestion{}, fmt.Errorf("failed to analyze user patterns: %w", err)
	}
	return s.SuggestFor(ctx, userID, taskName, hint, profile), nil
}

// SuggestFor proposes a time using an already computed profile snapshot
func (s *Suggester) SuggestFor(ctx context.Context, userID, taskName, hint string, profile models.UserProfile) models.Suggestion {
	now := s.now().In(s.loc)

	res := s.reasoner.SuggestTime(ctx, ai.SuggestTimeRequest{
		UserID:   userID,
		TaskName: taskName,
		Profile:  profile,
		Hint:     hint,
		Now:      now,
	})
	if res.OK() {
		// the response was validated against TimeLayout already
		if t, err := models.ParseTime(res.Value.SuggestedTime, s.loc); err == nil {
			s.logger.Info("suggested time from reasoning service",
				zap.String("user_id", userID),
				zap.String("task", taskName),
				zap.String("suggested_time", res.Value.SuggestedTime))
			return models.Suggestion{
				Time:       t,
				Reasoning:  res.Value.Reasoning,
				Confidence: *res.Value.Confidence,
			}
		}
	}

	return Fallback(now, profile, hint, s.loc)
}

// Fallback is the deterministic suggestion used when the reasoning service
// cannot answer. It depends only on its arguments.
func Fallback(now time.Time, profile models.UserProfile, hint string, loc *time.Location) models.Suggestion {
	now = now.In(loc)

	if hint != "" {
		if t, err := models.ParseTime(hint, loc); err == nil {
			return models.Suggestion{Time: t, Reasoning: hintReasoning, Confidence: HintConfidence}
		}
	}

	if profile.IsEstablished() && len(profile.PreferredHours) > 0 {
		hour := profile.PreferredHours[0]
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return models.Suggestion{
			Time:       t,
			Reasoning:  fmt.Sprintf("Based on your preferred working hour (%d:00)", hour),
			Confidence: PreferredHourConfidence,
		}
	}

	tomorrow := now.AddDate(0, 0, 1)
	return models.Suggestion{
		Time:       time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), DefaultHour, 0, 0, 0, loc),
		Reasoning:  defaultReasoning,
		Confidence: DefaultConfidence,
	}
}
