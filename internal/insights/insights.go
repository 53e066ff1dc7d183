package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/pkg/models"
	"go.uber.org/zap"
)

const (
	// GoodCompletionRate separates the "doing great" insights from the improvement ones
	GoodCompletionRate = 0.7
	// WeakCompletionRate adds a timing suggestion to task modifications
	WeakCompletionRate = 0.6
	// complexTaskWords is the task name length above which a task counts as complex
	complexTaskWords = 5
)

// ProfileSource computes the current profile of a user
type ProfileSource interface {
	Analyze(ctx context.Context, userID string) (models.UserProfile, error)
}

// Reasoner produces insights and task modifications through the reasoning service
type Reasoner interface {
	Insights(ctx context.Context, profile models.UserProfile) ai.Result[ai.InsightsAdvice]
	TaskModifications(ctx context.Context, req ai.DecisionRequest) ai.Result[ai.Modifications]
}

// Service explains a user's productivity and suggests task changes
type Service struct {
	profiles ProfileSource
	reasoner Reasoner
	logger   *zap.Logger
}

// New creates an insights service
func New(profiles ProfileSource, reasoner Reasoner, logger *zap.Logger) *Service {
	return &Service{profiles: profiles, reasoner: reasoner, logger: logger}
}

// Insights summarises the user's productivity patterns
func (s *Service) Insights(ctx context.Context, userID string) (models.Insights, error) {
	profile, err := s.profiles.Analyze(ctx, userID)
	if err != nil {
		return models.Insights{}, fmt.Errorf("failed to analyze user patterns: %w", err)
	}

	res := s.reasoner.Insights(ctx, profile)
	if !res.OK() {
		return Fallback(profile), nil
	}
	return models.Insights{
		BestHours:          res.Value.BestHours,
		CompletionPatterns: res.Value.CompletionPatterns,
		ImprovementAreas:   nonNil(res.Value.ImprovementAreas),
		Recommendations:    nonNil(res.Value.Recommendations),
		ProductivityScore:  *res.Value.ProductivityScore,
	}, nil
}

// TaskModifications suggests how a scheduled task could be changed to succeed more often
func (s *Service) TaskModifications(ctx context.Context, userID, taskName string, scheduledTime time.Time) ([]string, error) {
	profile, err := s.profiles.Analyze(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze user patterns: %w", err)
	}

	res := s.reasoner.TaskModifications(ctx, ai.DecisionRequest{
		TaskName:      taskName,
		ScheduledTime: scheduledTime,
		Profile:       profile,
	})
	if !res.OK() {
		return FallbackModifications(taskName, profile), nil
	}

	suggestions := make([]string, 0, len(res.Value))
	for _, m := range res.Value {
		if m = strings.TrimSpace(m); m != "" {
			suggestions = append(suggestions, m)
		}
	}
	return suggestions, nil
}

// Fallback derives insights from the profile alone
func Fallback(profile models.UserProfile) models.Insights {
	if !profile.IsEstablished() {
		return models.Insights{
			BestHours:          "Start using the system to discover your optimal working hours",
			CompletionPatterns: "No patterns yet - your data will help improve suggestions",
			ImprovementAreas:   []string{"Start tracking your tasks regularly"},
			Recommendations:    []string{"Create your first few reminders to establish patterns"},
			ProductivityScore:  models.NeutralProductivityScore,
		}
	}

	out := models.Insights{
		ProductivityScore:  profile.CompletionRate,
		CompletionPatterns: fmt.Sprintf("You complete %.1f%% of your scheduled tasks", profile.CompletionRate*100),
		BestHours:          "Continue using the system to identify your best working hours",
	}
	if len(profile.PreferredHours) > 0 {
		out.BestHours = fmt.Sprintf("Your most productive hours are around %d:00", profile.PreferredHours[0])
	}
	if profile.CompletionRate < GoodCompletionRate {
		out.ImprovementAreas = []string{"Task completion rate could be improved"}
		out.Recommendations = []string{"Try scheduling tasks during your preferred hours"}
	} else {
		out.ImprovementAreas = []string{"You're doing great! Keep up the good work"}
		out.Recommendations = []string{"Consider adding more challenging tasks"}
	}
	return out
}

// FallbackModifications suggests generic task changes
func FallbackModifications(taskName string, profile models.UserProfile) []string {
	suggestions := []string{"Consider breaking this task into smaller steps"}
	if profile.IsEstablished() && profile.CompletionRate < WeakCompletionRate {
		suggestions = append(suggestions, "Schedule this task during your most productive hours")
	}
	if len(strings.Fields(taskName)) > complexTaskWords {
		suggestions = append(suggestions, "This seems like a complex task - consider preparation time")
	}
	return append(suggestions, "Set aside dedicated time without distractions")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
