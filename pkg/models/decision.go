package models

import (
	"fmt"
	"strings"
)

// Priority is the urgency assigned to a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low/normal/high; "medium" is treated as normal
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "normal", "medium":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("unknown priority level %q", s)
}

// Decision is the scheduling verdict for one task
type Decision struct {
	ShouldReschedule bool     `json:"should_reschedule"`
	PriorityLevel    Priority `json:"priority_level"`
	SuggestedBreaks  []string `json:"suggested_breaks"`
	ProductivityTips []string `json:"productivity_tips"`
	TaskOptimization string   `json:"task_optimization,omitempty"`
	Reasoning        string   `json:"reasoning"`
}

// NewDecision returns the neutral decision every evaluation starts from
func NewDecision() *Decision {
	return &Decision{
		PriorityLevel:    PriorityNormal,
		SuggestedBreaks:  []string{},
		ProductivityTips: []string{},
	}
}
