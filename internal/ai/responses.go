package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/remindagent/pkg/models"
)

// TimeSuggestion is the reasoning service's proposed slot for a task
type TimeSuggestion struct {
	SuggestedTime string   `json:"suggested_time"`
	Reasoning     string   `json:"reasoning"`
	Confidence    *float64 `json:"confidence"`
}

// Validate checks required fields and ranges
func (s *TimeSuggestion) Validate() error {
	if _, err := time.Parse(models.TimeLayout, strings.TrimSpace(s.SuggestedTime)); err != nil {
		return fmt.Errorf("suggested_time: %w", models.ErrInvalidTimeFormat)
	}
	if strings.TrimSpace(s.Reasoning) == "" {
		return errors.New("reasoning is required")
	}
	return validateConfidence(s.Confidence)
}

// DecisionAdvice is the reasoning service's take on a scheduled task.
// Absent list fields are nil and leave the baseline decision untouched.
type DecisionAdvice struct {
	PriorityLevel    *string  `json:"priority_level"`
	ShouldReschedule *bool    `json:"should_reschedule"`
	ProductivityTips []string `json:"productivity_tips"`
	SuggestedBreaks  []string `json:"suggested_breaks"`
	TaskOptimization string   `json:"task_optimization"`
}

// Validate checks required fields
func (a *DecisionAdvice) Validate() error {
	if a.PriorityLevel == nil {
		return errors.New("priority_level is required")
	}
	if _, err := models.ParsePriority(*a.PriorityLevel); err != nil {
		return err
	}
	if a.ShouldReschedule == nil {
		return errors.New("should_reschedule is required")
	}
	return nil
}

// Priority returns the validated priority level
func (a *DecisionAdvice) Priority() models.Priority {
	p, _ := models.ParsePriority(*a.PriorityLevel)
	return p
}

// InsightsAdvice is the reasoning service's productivity analysis
type InsightsAdvice struct {
	BestHours          string   `json:"best_hours"`
	CompletionPatterns string   `json:"completion_patterns"`
	ImprovementAreas   []string `json:"improvement_areas"`
	Recommendations    []string `json:"recommendations"`
	ProductivityScore  *float64 `json:"productivity_score"`
}

// Validate checks required fields and ranges
func (a *InsightsAdvice) Validate() error {
	if a.BestHours == "" || a.CompletionPatterns == "" {
		return errors.New("best_hours and completion_patterns are required")
	}
	if a.ProductivityScore == nil || *a.ProductivityScore < 0 || *a.ProductivityScore > 1 {
		return errors.New("productivity_score must be within [0,1]")
	}
	return nil
}

// Modifications is a list of suggested task changes
type Modifications []string

// Validate requires at least one non-empty suggestion
func (m *Modifications) Validate() error {
	for _, s := range *m {
		if strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return errors.New("no suggestions returned")
}

// ParsedTask is a task extracted from free-form input
type ParsedTask struct {
	Task          string   `json:"task"`
	SuggestedTime string   `json:"suggested_time"`
	Priority      string   `json:"priority"`
	Reasoning     string   `json:"reasoning"`
	Confidence    *float64 `json:"confidence"`
}

// Validate checks required fields and ranges
func (p *ParsedTask) Validate() error {
	if strings.TrimSpace(p.Task) == "" {
		return errors.New("task is required")
	}
	if _, err := time.Parse(models.TimeLayout, strings.TrimSpace(p.SuggestedTime)); err != nil {
		return fmt.Errorf("suggested_time: %w", models.ErrInvalidTimeFormat)
	}
	if _, err := models.ParsePriority(p.Priority); err != nil {
		return err
	}
	return validateConfidence(p.Confidence)
}

// ReminderContent is a personalised reminder
type ReminderContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate requires both parts
func (r *ReminderContent) Validate() error {
	if strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.Body) == "" {
		return errors.New("subject and body are required")
	}
	return nil
}

func validateConfidence(c *float64) error {
	if c == nil {
		return errors.New("confidence is required")
	}
	if *c < 0 || *c > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", *c)
	}
	return nil
}
