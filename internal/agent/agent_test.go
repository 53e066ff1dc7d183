package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/internal/ai/aitest"
	"github.com/example/remindagent/internal/database"
	"github.com/example/remindagent/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[int64]func()
	at   map[int64]time.Time
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[int64]func(){}, at: map[int64]time.Time{}}
}

func (f *fakeJobs) Schedule(eventID int64, at time.Time, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[eventID] = fn
	f.at[eventID] = at
	return nil
}

func (f *fakeJobs) Cancel(eventID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[eventID]; !ok {
		return errors.New("not found")
	}
	delete(f.jobs, eventID)
	delete(f.at, eventID)
	return nil
}

func (f *fakeJobs) fire(eventID int64) {
	f.mu.Lock()
	fn := f.jobs[eventID]
	f.mu.Unlock()
	fn()
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.ReminderMessage
}

func (r *recordingNotifier) Notify(_ context.Context, _ string, msg models.ReminderMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

type fixture struct {
	store    *database.MemoryStore
	jobs     *fakeJobs
	notifier *recordingNotifier
	agent    *Agent
}

func newFixture(fake *aitest.Fake) *fixture {
	f := &fixture{
		store:    database.NewMemoryStore(),
		jobs:     newFakeJobs(),
		notifier: &recordingNotifier{},
	}
	var client *ai.Client
	if fake != nil {
		client = ai.New(fake, ai.Options{Timeout: 50 * time.Millisecond, RequestsPerMinute: 60}, zap.NewNop(), nil)
	}
	f.agent = New(Options{
		Store:    f.store,
		Client:   client,
		Jobs:     f.jobs,
		Notifier: f.notifier,
		Location: time.UTC,
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return now },
	})
	return f
}

func (f *fixture) seed(t *testing.T, userID string, status models.CompletionStatus, times ...string) {
	t.Helper()
	for _, s := range times {
		at, err := models.ParseTime(s, time.UTC)
		require.NoError(t, err)
		_, err = f.store.ImportTaskEvent(context.Background(), &models.TaskEvent{
			UserID: userID, TaskName: "history", ScheduledTime: at, CompletionStatus: status,
		})
		require.NoError(t, err)
	}
}

func TestEstablishedUserEndToEnd(t *testing.T) {
	f := newFixture(aitest.Offline())
	f.seed(t, "u1", models.StatusCompleted, "2025-05-20 09:00", "2025-05-21 09:00", "2025-05-22 14:00")
	ctx := context.Background()

	profile, err := f.agent.AnalyzeUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, profile.CompletionRate)
	assert.Equal(t, []int{9, 14}, profile.PreferredHours)

	d, err := f.agent.Decide(ctx, "u1", "Write report", "2025-06-01 09:00")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNormal, d.PriorityLevel)
	assert.Empty(t, d.SuggestedBreaks)
	assert.False(t, d.ShouldReschedule)
}

func TestNewUserSuggestionWithoutService(t *testing.T) {
	f := newFixture(nil)

	s, err := f.agent.SuggestTime(context.Background(), "new_user_x", "Call dentist", "")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-02 09:00", models.FormatTime(s.Time))
	assert.Equal(t, 0.5, s.Confidence)
}

func TestDecideRejectsBadTime(t *testing.T) {
	_, err := newFixture(nil).agent.Decide(context.Background(), "u1", "Task", "tomorrow-ish")
	assert.ErrorIs(t, err, models.ErrInvalidTimeFormat)
}

func TestRecordOutcomeWithoutEvent(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	profile, err := f.agent.RecordOutcome(ctx, "u1", "Taxes", "failed", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Taxes"}, profile.TaskCategories.ChallengingTasks)

	events, err := f.store.ListTaskEvents(ctx, "u1", database.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecordOutcomeRejectsUnknownOutcome(t *testing.T) {
	_, err := newFixture(nil).agent.RecordOutcome(context.Background(), "u1", "Taxes", "done", "")
	assert.ErrorIs(t, err, models.ErrInvalidOutcome)
}

func TestScheduleTaskRejectsPast(t *testing.T) {
	f := newFixture(nil)

	_, err := f.agent.ScheduleTask(context.Background(), "u1", "Gym", "2025-06-01 08:00")
	assert.ErrorIs(t, err, ErrNotFuture)

	events, err := f.store.ListTaskEvents(context.Background(), "u1", database.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestScheduleTaskAndFireReminder(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	task, err := f.agent.ScheduleTask(ctx, "u1", "Gym", "2025-06-01 18:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 18:00", task.ScheduledTime)
	assert.NotEmpty(t, task.Decision.SuggestedBreaks)

	pending, err := f.store.ListTaskEvents(ctx, "u1", database.EventFilter{PendingAfter: now})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.EventID, pending[0].ID)
	assert.Equal(t, "2025-06-01 18:00", models.FormatTime(f.jobs.at[task.EventID]))

	f.jobs.fire(task.EventID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, FallbackReminder("Gym"), f.notifier.sent[0])

	log, err := f.store.DecisionLog(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, models.DecisionTaskScheduling, log[0].DecisionType)
	assert.Equal(t, models.DecisionReminderSent, log[1].DecisionType)
	assert.Equal(t, "Sent reminder for Gym", log[1].Reasoning)
	assert.Equal(t, "Subject: Task Reminder: Gym", log[1].ActionTaken)

	require.NoError(t, f.agent.CancelReminder(task.EventID))
	assert.Error(t, f.agent.CancelReminder(task.EventID))
}

func TestSendReminderPersonalised(t *testing.T) {
	f := newFixture(aitest.NewFake(aitest.Reply{Content: `{"subject": "Time to move!", "body": "Your evening gym streak continues."}`}))

	err := f.agent.SendReminder(context.Background(), models.TaskEvent{ID: 1, UserID: "u1", TaskName: "Gym"})
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Time to move!", f.notifier.sent[0].Subject)
}

func TestRestoreReminders(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	for _, at := range []time.Time{now.Add(-time.Hour), now.Add(time.Hour), now.Add(48 * time.Hour)} {
		_, err := f.store.AppendTaskEvent(ctx, "u1", "task", at)
		require.NoError(t, err)
	}
	_, err := f.store.AppendTaskEvent(ctx, "u2", "task", now.Add(2*time.Hour))
	require.NoError(t, err)

	restored, err := f.agent.RestoreReminders(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, restored)
	assert.Len(t, f.jobs.jobs, 3)
}

func TestRescheduleTaskSuggestsFreshTime(t *testing.T) {
	f := newFixture(nil)
	f.seed(t, "u1", models.StatusCompleted, "2025-05-20 16:00")

	s, err := f.agent.RescheduleTask(context.Background(), "u1", "Gym")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 16:00", models.FormatTime(s.Time))
	assert.Equal(t, 0.7, s.Confidence)
}

func TestStorageFailureSurfaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newFixture(nil)

	_, err := f.agent.AnalyzeUser(ctx, "u1")
	assert.ErrorIs(t, err, database.ErrStorageUnavailable)

	_, err = f.agent.RecordOutcome(ctx, "u1", "Gym", "completed", "")
	assert.ErrorIs(t, err, database.ErrStorageUnavailable)
}

type brokenJobs struct{}

func (brokenJobs) Schedule(int64, time.Time, func()) error { return errors.New("scheduler stopped") }
func (brokenJobs) Cancel(int64) error                      { return errors.New("scheduler stopped") }

func TestScheduleTaskKeepsEventWhenRegistrationFails(t *testing.T) {
	f := newFixture(nil)
	f.agent.jobs = brokenJobs{}
	ctx := context.Background()

	task, err := f.agent.ScheduleTask(ctx, "u1", "Gym", "2025-06-01 18:00")
	require.NoError(t, err)
	require.NotNil(t, task.Decision)

	pending, err := f.store.ListTaskEvents(ctx, "u1", database.EventFilter{PendingAfter: now})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.EventID, pending[0].ID)
}

type unloggedStore struct {
	*database.MemoryStore
}

func (unloggedStore) AppendDecisionLog(context.Context, string, string, string, string) error {
	return errors.Join(database.ErrStorageUnavailable, errors.New("disk full"))
}

func TestDecisionLogFailureDoesNotFailWorkflow(t *testing.T) {
	f := newFixture(nil)
	store := unloggedStore{f.store}
	f.agent = New(Options{
		Store:    store,
		Jobs:     f.jobs,
		Notifier: f.notifier,
		Location: time.UTC,
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return now },
	})
	ctx := context.Background()

	task, err := f.agent.ScheduleTask(ctx, "u1", "Gym", "2025-06-01 18:00")
	require.NoError(t, err)
	assert.NotEmpty(t, task.Decision.SuggestedBreaks)

	err = f.agent.SendReminder(ctx, models.TaskEvent{ID: task.EventID, UserID: "u1", TaskName: "Gym"})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, FallbackReminder("Gym"), f.notifier.sent[0])
}
