package insights

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

func newService(store database.BehaviorStore, fake *aitest.Fake) *Service {
	client := ai.New(fake, ai.Options{Timeout: 50 * time.Millisecond, RequestsPerMinute: 60}, zap.NewNop(), nil)
	return New(analyzer.New(store, time.UTC), client, zap.NewNop())
}

func seed(t *testing.T, store database.BehaviorStore, statuses ...models.CompletionStatus) {
	t.Helper()
	for i, status := range statuses {
		_, err := store.ImportTaskEvent(context.Background(), &models.TaskEvent{
			UserID:           "u1",
			TaskName:         "task",
			ScheduledTime:    time.Date(2025, 5, 1+i, 10, 0, 0, 0, time.UTC),
			CompletionStatus: status,
		})
		require.NoError(t, err)
	}
}

func TestFallbackNewUser(t *testing.T) {
	out := Fallback(models.UserProfile{Status: models.ProfileNewUser, ProductivityScore: 0.5})

	assert.Equal(t, 0.5, out.ProductivityScore)
	assert.Equal(t, []string{"Start tracking your tasks regularly"}, out.ImprovementAreas)
}

func TestFallbackEstablished(t *testing.T) {
	struggling := Fallback(models.UserProfile{
		Status:         models.ProfileEstablishedUser,
		CompletionRate: 0.25,
		PreferredHours: []int{10},
	})
	assert.Equal(t, 0.25, struggling.ProductivityScore)
	assert.Equal(t, "You complete 25.0% of your scheduled tasks", struggling.CompletionPatterns)
	assert.Equal(t, "Your most productive hours are around 10:00", struggling.BestHours)
	assert.Equal(t, []string{"Task completion rate could be improved"}, struggling.ImprovementAreas)

	thriving := Fallback(models.UserProfile{Status: models.ProfileEstablishedUser, CompletionRate: 0.9})
	assert.Equal(t, []string{"Consider adding more challenging tasks"}, thriving.Recommendations)
	assert.Equal(t, "Continue using the system to identify your best working hours", thriving.BestHours)
}

func TestFallbackModifications(t *testing.T) {
	weak := models.UserProfile{Status: models.ProfileEstablishedUser, CompletionRate: 0.5}

	assert.Equal(t, []string{
		"Consider breaking this task into smaller steps",
		"Schedule this task during your most productive hours",
		"This seems like a complex task - consider preparation time",
		"Set aside dedicated time without distractions",
	}, FallbackModifications("prepare the quarterly board meeting slide deck", weak))

	assert.Equal(t, []string{
		"Consider breaking this task into smaller steps",
		"Set aside dedicated time without distractions",
	}, FallbackModifications("Gym", models.UserProfile{Status: models.ProfileNewUser}))
}

func TestInsightsServiceDown(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, models.StatusCompleted, models.StatusCompleted, models.StatusFailed, models.StatusCompleted)

	out, err := newService(store, aitest.Offline()).Insights(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 0.75, out.ProductivityScore)
	assert.Equal(t, "Your most productive hours are around 10:00", out.BestHours)
}

func TestInsightsFromService(t *testing.T) {
	fake := aitest.NewFake(aitest.Reply{Content: "```json\n" + `{
		"best_hours": "Mornings",
		"completion_patterns": "Steady",
		"recommendations": ["Keep going"],
		"productivity_score": 0.8
	}` + "\n```"})

	out, err := newService(database.NewMemoryStore(), fake).Insights(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "Mornings", out.BestHours)
	assert.Equal(t, 0.8, out.ProductivityScore)
	assert.Equal(t, []string{}, out.ImprovementAreas)
}

func TestTaskModificationsFromService(t *testing.T) {
	fake := aitest.NewFake(aitest.Reply{Content: `["Prepare notes", " ", "Book a room"]`})

	out, err := newService(database.NewMemoryStore(), fake).
		TaskModifications(context.Background(), "u1", "Meeting", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []string{"Prepare notes", "Book a room"}, out)
}

func TestTaskModificationsEmptyAnswerFallsBack(t *testing.T) {
	fake := aitest.NewFake(aitest.Reply{Content: `[]`})

	out, err := newService(database.NewMemoryStore(), fake).
		TaskModifications(context.Background(), "u1", "Gym", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "Consider breaking this task into smaller steps", out[0])
}
