package models

// Insights summarises a user's productivity for display
type Insights struct {
	BestHours          string   `json:"best_hours"`
	CompletionPatterns string   `json:"completion_patterns"`
	ImprovementAreas   []string `json:"improvement_areas"`
	Recommendations    []string `json:"recommendations"`
	ProductivityScore  float64  `json:"productivity_score"`
}

// ParsedRequest is a task extracted from free-form user input
type ParsedRequest struct {
	Task       string     `json:"task"`
	Suggestion Suggestion `json:"suggestion"`
	Priority   Priority   `json:"priority"`
}

// ReminderMessage is the content delivered when a reminder fires
type ReminderMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
