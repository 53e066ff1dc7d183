package agent

import (
	"context"
	"fmt"

	"github.com/example/remindagent/pkg/models"
	"go.uber.org/zap"
)

// ScheduleTask evaluates the task, records it and registers its reminder.
// A failed job registration is logged and does not undo the recorded task.
func (a *Agent) ScheduleTask(ctx context.Context, userID, taskName, scheduledTime string) (*ScheduledTask, error) {
	at, err := models.ParseInputTime(scheduledTime, a.loc)
	if err != nil {
		return nil, err
	}
	if !at.After(a.now()) {
		return nil, fmt.Errorf("%w: %s", ErrNotFuture, models.FormatTime(at))
	}
	log := a.requestLogger("schedule_task", userID)

	d, err := a.engine.Decide(ctx, userID, taskName, at)
	if err != nil {
		log.Error("failed to decide", zap.Error(err))
		return nil, err
	}

	id, err := a.store.AppendTaskEvent(ctx, userID, taskName, at)
	if err != nil {
		log.Error("failed to record task", zap.Error(err))
		return nil, err
	}

	event := models.TaskEvent{ID: id, UserID: userID, TaskName: taskName, ScheduledTime: at}
	// the event is already recorded; serve restores its job on the next start
	if err := a.register(event); err != nil {
		log.Warn("failed to register reminder", zap.Int64("event_id", id), zap.Error(err))
	}

	log.Info("task scheduled",
		zap.Int64("event_id", id),
		zap.String("task", taskName),
		zap.String("at", models.FormatTime(at)))

	return &ScheduledTask{
		EventID:       id,
		TaskName:      taskName,
		ScheduledTime: models.FormatTime(at.In(a.loc)),
		Decision:      d,
	}, nil
}

// RescheduleTask proposes a new time for a task without applying it
func (a *Agent) RescheduleTask(ctx context.Context, userID, taskName string) (models.Suggestion, error) {
	return a.SuggestTime(ctx, userID, taskName, "")
}

// CancelReminder removes the reminder job of a task event
func (a *Agent) CancelReminder(eventID int64) error {
	if a.jobs == nil {
		return nil
	}
	return a.jobs.Cancel(eventID)
}

// RestoreReminders re-registers jobs for every unresolved task still in the future
func (a *Agent) RestoreReminders(ctx context.Context) (int, error) {
	events, err := a.store.ListUnresolvedAfter(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("failed to load pending reminders: %w", err)
	}
	restored := 0
	for _, event := range events {
		if err := a.register(event); err != nil {
			a.logger.Warn("failed to restore reminder",
				zap.Int64("event_id", event.ID),
				zap.String("user_id", event.UserID),
				zap.Error(err))
			continue
		}
		restored++
	}
	a.logger.Info("reminders restored", zap.Int("count", restored), zap.Int("pending", len(events)))
	return restored, nil
}

func (a *Agent) register(event models.TaskEvent) error {
	if a.jobs == nil {
		return nil
	}
	return a.jobs.Schedule(event.ID, event.ScheduledTime, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
		defer cancel()
		if err := a.SendReminder(ctx, event); err != nil {
			a.logger.Error("reminder failed",
				zap.Int64("event_id", event.ID),
				zap.String("user_id", event.UserID),
				zap.Error(err))
		}
	})
}

// SendReminder delivers a personalised reminder for the event and logs it
func (a *Agent) SendReminder(ctx context.Context, event models.TaskEvent) error {
	log := a.requestLogger("send_reminder", event.UserID)

	profile, err := a.analyzer.Analyze(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to analyze user patterns: %w", err)
	}

	msg := FallbackReminder(event.TaskName)
	if res := a.client.ReminderMessage(ctx, event.UserID, event.TaskName, profile); res.OK() {
		msg = models.ReminderMessage{Subject: res.Value.Subject, Body: res.Value.Body}
	}

	if err := a.notifier.Notify(ctx, event.UserID, msg); err != nil {
		return fmt.Errorf("failed to deliver reminder: %w", err)
	}

	if err := a.store.AppendDecisionLog(ctx, event.UserID, models.DecisionReminderSent,
		"Sent reminder for "+event.TaskName, "Subject: "+msg.Subject); err != nil {
		a.metrics.DecisionLogFailure(models.DecisionReminderSent)
		log.Warn("failed to log reminder", zap.Int64("event_id", event.ID), zap.Error(err))
	}
	log.Info("reminder delivered", zap.Int64("event_id", event.ID), zap.String("task", event.TaskName))
	return nil
}

// FallbackReminder is the plain reminder sent when no personalised one is available
func FallbackReminder(taskName string) models.ReminderMessage {
	return models.ReminderMessage{
		Subject: "Task Reminder: " + taskName,
		Body:    "This is a reminder for your task: " + taskName,
	}
}
