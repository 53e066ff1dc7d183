package models

import "time"

// ProfileStatus distinguishes users with and without history
type ProfileStatus string

const (
	ProfileNewUser         ProfileStatus = "new_user"
	ProfileEstablishedUser ProfileStatus = "established_user"
)

// NeutralProductivityScore is used when there is no history to score
const NeutralProductivityScore = 0.5

// UserProfile is the derived behavioral summary of a user. It is never persisted.
type UserProfile struct {
	Status            ProfileStatus  `json:"patterns"`
	CompletionRate    float64        `json:"completion_rate"`
	PreferredHours    []int          `json:"preferred_hours"`
	PreferredDays     []time.Weekday `json:"preferred_days"`
	ProductivityScore float64        `json:"productivity_score"`
	TotalTasks        int            `json:"total_tasks"`
}

// IsEstablished reports whether the profile was computed from real history
func (p UserProfile) IsEstablished() bool {
	return p.Status == ProfileEstablishedUser
}
