package suggester

import (
	"context"
	"testing"
	"time"

	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/internal/ai/aitest"
	"github.com/example/remindagent/internal/analyzer"
	"github.com/example/remindagent/internal/database"
	"github.com/example/remindagent/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC)

func established(hours ...int) models.UserProfile {
	return models.UserProfile{
		Status:         models.ProfileEstablishedUser,
		CompletionRate: 1,
		PreferredHours: hours,
		TotalTasks:     len(hours),
	}
}

func newSuggester(store database.BehaviorStore, fake *aitest.Fake) *Suggester {
	client := ai.New(fake, ai.Options{Timeout: 50 * time.Millisecond, RequestsPerMinute: 60}, zap.NewNop(), nil)
	return New(analyzer.New(store, time.UTC), client, time.UTC, zap.NewNop()).
		WithClock(func() time.Time { return now })
}

func TestFallbackIsDeterministic(t *testing.T) {
	profile := established(9, 14)

	first := Fallback(now, profile, "", time.UTC)
	second := Fallback(now, profile, "", time.UTC)

	assert.Equal(t, first, second)
}

func TestFallbackHintPrecedence(t *testing.T) {
	for _, profile := range []models.UserProfile{established(7), {Status: models.ProfileNewUser}} {
		s := Fallback(now, profile, "2030-01-01 10:00", time.UTC)

		assert.Equal(t, "2030-01-01 10:00", models.FormatTime(s.Time))
		assert.Equal(t, 0.8, s.Confidence)
		assert.Equal(t, "using the user's stated preferred time", s.Reasoning)
	}
}

func TestFallbackPastHintIsStillUsed(t *testing.T) {
	s := Fallback(now, established(9), "2020-01-01 10:00", time.UTC)
	assert.Equal(t, "2020-01-01 10:00", models.FormatTime(s.Time))
}

func TestFallbackInvalidHintFallsThrough(t *testing.T) {
	s := Fallback(now, established(15), "next tuesday", time.UTC)

	assert.Equal(t, "2025-06-01 15:00", models.FormatTime(s.Time))
	assert.Equal(t, 0.7, s.Confidence)
}

func TestFallbackPreferredHourRollsToTomorrow(t *testing.T) {
	later := Fallback(now, established(15, 9), "", time.UTC)
	assert.Equal(t, "2025-06-01 15:00", models.FormatTime(later.Time))
	assert.Equal(t, "Based on your preferred working hour (15:00)", later.Reasoning)

	passed := Fallback(now, established(9, 15), "", time.UTC)
	assert.Equal(t, "2025-06-02 09:00", models.FormatTime(passed.Time))

	// exactly now is not strictly in the future
	exact := Fallback(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), established(9), "", time.UTC)
	assert.Equal(t, "2025-06-02 09:00", models.FormatTime(exact.Time))
}

func TestFallbackDefaultIsTomorrowMorning(t *testing.T) {
	s := Fallback(now, models.UserProfile{Status: models.ProfileNewUser}, "", time.UTC)

	assert.Equal(t, "2025-06-02 09:00", models.FormatTime(s.Time))
	assert.Equal(t, 0.5, s.Confidence)
}

func TestSuggestNewUserWithServiceDown(t *testing.T) {
	s, err := newSuggester(database.NewMemoryStore(), aitest.Offline()).
		Suggest(context.Background(), "new_user_x", "Call dentist", "")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-02 09:00", models.FormatTime(s.Time))
	assert.Equal(t, 0.5, s.Confidence)
}

func TestSuggestUsesServiceAnswer(t *testing.T) {
	fake := aitest.NewFake(aitest.Reply{
		Content: `{"suggested_time": "2025-06-03 16:00", "reasoning": "afternoons are free", "confidence": 0.65}`,
	})

	s, err := newSuggester(database.NewMemoryStore(), fake).
		Suggest(context.Background(), "u1", "Write report", "2030-01-01 10:00")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-03 16:00", models.FormatTime(s.Time))
	assert.Equal(t, "afternoons are free", s.Reasoning)
	assert.Equal(t, 0.65, s.Confidence)
	assert.Contains(t, fake.Prompts[0], "2030-01-01 10:00")
}

func TestSuggestMalformedAnswerFallsBack(t *testing.T) {
	fake := aitest.NewFake(aitest.Reply{Content: `{"suggested_time": "soon"}`})

	s, err := newSuggester(database.NewMemoryStore(), fake).
		Suggest(context.Background(), "u1", "Write report", "2030-01-01 10:00")
	require.NoError(t, err)

	assert.Equal(t, 0.8, s.Confidence)
	assert.Equal(t, 1, fake.Calls())
}

func TestSuggestFallbackRepeatable(t *testing.T) {
	store := database.NewMemoryStore()
	_, err := store.ImportTaskEvent(context.Background(), &models.TaskEvent{
		UserID: "u1", TaskName: "Gym", ScheduledTime: time.Date(2025, 5, 20, 18, 0, 0, 0, time.UTC),
		CompletionStatus: models.StatusCompleted,
	})
	require.NoError(t, err)

	sug := newSuggester(store, aitest.Offline())
	first, err := sug.Suggest(context.Background(), "u1", "Gym", "")
	require.NoError(t, err)
	second, err := sug.Suggest(context.Background(), "u1", "Gym", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "2025-06-01 18:00", models.FormatTime(first.Time))
}

func TestSuggestNilClient(t *testing.T) {
	var client *ai.Client
	sug := New(analyzer.New(database.NewMemoryStore(), time.UTC), client, time.UTC, zap.NewNop()).
		WithClock(func() time.Time { return now })

	s, err := sug.Suggest(context.Background(), "u1", "Gym", "")
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Confidence)
}

type brokenProfiles struct{}

func (brokenProfiles) Analyze(context.Context, string) (models.UserProfile, error) {
	return models.UserProfile{}, database.ErrStorageUnavailable
}

func TestSuggestSurfacesStorageFailure(t *testing.T) {
	sug := New(brokenProfiles{}, (*ai.Client)(nil), time.UTC, zap.NewNop())

	_, err := sug.Suggest(context.Background(), "u1", "Gym", "")
	assert.ErrorIs(t, err, database.ErrStorageUnavailable)
}
