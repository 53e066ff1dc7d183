package models

import (
	"encoding/json"
	"time"
)

// Suggestion is a recommended time for a task
type Suggestion struct {
	Time       time.Time `json:"-"`
	Reasoning  string    `json:"reasoning"`
	Confidence float64   `json:"confidence"`
}

// MarshalJSON renders the suggested time in TimeLayout
func (s Suggestion) MarshalJSON() ([]byte, error) {
	type alias Suggestion
	return json.Marshal(struct {
		SuggestedTime string `json:"suggested_time"`
		alias
	}{
		SuggestedTime: FormatTime(s.Time),
		alias:         alias(s),
	})
}
