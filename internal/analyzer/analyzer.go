package analyzer

import (
	"context"
	"sort"
	"time"

	"github.com/example/remindagent/internal/database"
	"github.com/example/remindagent/pkg/models"
	"github.com/montanaflynn/stats"
)

const (
	// how many preferred hours/days a profile reports
	topN = 3

	completionWeight  = 0.7
	consistencyWeight = 0.3
)

// EventLister reads a user's task history
type EventLister interface {
	ListTaskEvents(ctx context.Context, userID string, filter database.EventFilter) ([]models.TaskEvent, error)
}

// Analyzer derives a UserProfile from task history. Profiles are recomputed on every call.
type Analyzer struct {
	events EventLister
	loc    *time.Location
}

// New creates an analyzer that reads hours and weekdays in loc
func New(events EventLister, loc *time.Location) *Analyzer {
	if loc == nil {
		loc = time.Local
	}
	return &Analyzer{events: events, loc: loc}
}

// Analyze loads the user's full history and summarises it
func (a *Analyzer) Analyze(ctx context.Context, userID string) (models.UserProfile, error) {
	events, err := a.events.ListTaskEvents(ctx, userID, database.EventFilter{})
	if err != nil {
		return models.UserProfile{}, err
	}
	return Profile(events, a.loc), nil
}

// Profile summarises events. Hours and weekdays are read in loc.
func Profile(events []models.TaskEvent, loc *time.Location) models.UserProfile {
	if len(events) == 0 {
		return models.UserProfile{
			Status:            models.ProfileNewUser,
			PreferredHours:    []int{},
			PreferredDays:     []time.Weekday{},
			ProductivityScore: models.NeutralProductivityScore,
		}
	}

	completed := 0
	hours := make([]int, 0, len(events))
	days := make([]int, 0, len(events))
	for _, e := range events {
		if e.CompletionStatus == models.StatusCompleted {
			completed++
		}
		t := e.ScheduledTime.In(loc)
		hours = append(hours, t.Hour())
		days = append(days, int(t.Weekday()))
	}

	completionRate := float64(completed) / float64(len(events))

	preferredDays := make([]time.Weekday, 0, topN)
	for _, d := range mostFrequent(days, topN) {
		preferredDays = append(preferredDays, time.Weekday(d))
	}

	return models.UserProfile{
		Status:            models.ProfileEstablishedUser,
		CompletionRate:    completionRate,
		PreferredHours:    mostFrequent(hours, topN),
		PreferredDays:     preferredDays,
		ProductivityScore: completionWeight*completionRate + consistencyWeight*(1-hourSpread(hours)),
		TotalTasks:        len(events),
	}
}

// hourSpread is the population standard deviation of hours over 24, clamped to [0,1]
func hourSpread(hours []int) float64 {
	data := make(stats.Float64Data, len(hours))
	for i, h := range hours {
		data[i] = float64(h)
	}
	sd, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return 0
	}
	spread := sd / 24
	switch {
	case spread != spread, spread < 0: // NaN or negative
		return 0
	case spread > 1:
		return 1
	}
	return spread
}

// mostFrequent returns up to n values by descending count, lower value first on ties
func mostFrequent(values []int, n int) []int {
	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}
	distinct := make([]int, 0, len(counts))
	for v := range counts {
		distinct = append(distinct, v)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] > counts[distinct[j]]
		}
		return distinct[i] < distinct[j]
	})
	if len(distinct) > n {
		distinct = distinct[:n]
	}
	return distinct
}
