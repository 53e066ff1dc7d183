package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/example/remindagent/internal/config"
	"github.com/example/remindagent/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, msg)
	}
	return tgbotapi.Message{}, r.err
}

var reminder = models.ReminderMessage{Subject: "Task Reminder: Gym", Body: "This is a reminder for your task: Gym"}

func TestTelegramNumericUserIsChat(t *testing.T) {
	api := &recordingSender{}
	n := newTelegram(api, 100, zap.NewNop())

	require.NoError(t, n.Notify(context.Background(), "555", reminder))

	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(555), api.sent[0].ChatID)
	assert.Equal(t, "Task Reminder: Gym\n\nThis is a reminder for your task: Gym", api.sent[0].Text)
}

func TestTelegramFallsBackToDefaultChat(t *testing.T) {
	api := &recordingSender{}
	n := newTelegram(api, 100, zap.NewNop())

	require.NoError(t, n.Notify(context.Background(), "alice@example.com", reminder))
	assert.Equal(t, int64(100), api.sent[0].ChatID)
}

func TestTelegramWithoutRecipient(t *testing.T) {
	n := newTelegram(&recordingSender{}, 0, zap.NewNop())

	err := n.Notify(context.Background(), "alice", reminder)
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestTelegramSendFailure(t *testing.T) {
	boom := errors.New("bad gateway")
	n := newTelegram(&recordingSender{err: boom}, 100, zap.NewNop())

	assert.ErrorIs(t, n.Notify(context.Background(), "1", reminder), boom)
}

func TestNewTelegramRequiresToken(t *testing.T) {
	_, err := NewTelegram(config.TelegramConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	require.NoError(t, NewLog(zap.New(core)).Notify(context.Background(), "u1", reminder))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "reminder", entry.Message)
	assert.Equal(t, "Task Reminder: Gym", entry.ContextMap()["subject"])
}
