package models

import "time"

// TaskCategories buckets task names by reported outcome
type TaskCategories struct {
	SuccessfulTasks  []string `json:"successful_tasks,omitempty"`
	ChallengingTasks []string `json:"challenging_tasks,omitempty"`
}

// PreferenceProfile is the persisted, per-user learning state
type PreferenceProfile struct {
	ID                   int64                  `json:"id"`
	UserID               string                 `json:"user_id"`
	PreferredTimes       map[string]interface{} `json:"preferred_times"`
	TaskCategories       TaskCategories         `json:"task_categories"`
	ProductivityPatterns map[string]interface{} `json:"productivity_patterns"`
	LastUpdated          time.Time              `json:"last_updated"`
}

// NewPreferenceProfile returns an empty profile for the user
func NewPreferenceProfile(userID string) *PreferenceProfile {
	return &PreferenceProfile{
		UserID:               userID,
		PreferredTimes:       map[string]interface{}{},
		ProductivityPatterns: map[string]interface{}{},
	}
}

// Clone returns a deep copy so callers never share list backing arrays
func (p *PreferenceProfile) Clone() *PreferenceProfile {
	c := *p
	c.TaskCategories.SuccessfulTasks = append([]string(nil), p.TaskCategories.SuccessfulTasks...)
	c.TaskCategories.ChallengingTasks = append([]string(nil), p.TaskCategories.ChallengingTasks...)
	c.PreferredTimes = make(map[string]interface{}, len(p.PreferredTimes))
	for k, v := range p.PreferredTimes {
		c.PreferredTimes[k] = v
	}
	c.ProductivityPatterns = make(map[string]interface{}, len(p.ProductivityPatterns))
	for k, v := range p.ProductivityPatterns {
		c.ProductivityPatterns[k] = v
	}
	return &c
}
