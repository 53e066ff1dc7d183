package models

import "time"

// Decision types written to the audit log
const (
	DecisionTaskScheduling = "task_scheduling"
	DecisionReminderSent   = "reminder_sent"
)

// DecisionLogEntry is a write-once record of a decision the engine made
type DecisionLogEntry struct {
	ID           int64     `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	DecisionType string    `json:"decision_type" db:"decision_type"`
	Reasoning    string    `json:"reasoning" db:"reasoning"`
	ActionTaken  string    `json:"action_taken" db:"action_taken"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
