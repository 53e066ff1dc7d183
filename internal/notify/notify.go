package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/remindagent/internal/config"
	"github.com/example/remindagent/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned when a reminder cannot be addressed to any chat
var ErrNoRecipient = errors.New("no chat to deliver the reminder to")

// Notifier delivers reminder messages to users
type Notifier interface {
	Notify(ctx context.Context, userID string, msg models.ReminderMessage) error
}

// sender is the part of tgbotapi.BotAPI used to deliver messages
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends reminders as Telegram messages
type TelegramNotifier struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

// NewTelegram connects to the Bot API with the configured token
func NewTelegram(cfg config.TelegramConfig, logger *zap.Logger) (*TelegramNotifier, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}
	logger.Info("telegram notifier authorized", zap.String("account", api.Self.UserName))
	return newTelegram(api, cfg.ChatID, logger), nil
}

func newTelegram(api sender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}
}

// Notify sends the reminder. Numeric user ids are Telegram private chat ids;
// other users receive it in the configured default chat.
func (n *TelegramNotifier) Notify(ctx context.Context, userID string, msg models.ReminderMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID := n.chatID
	if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
		chatID = id
	}
	if chatID == 0 {
		return fmt.Errorf("%w: user %s", ErrNoRecipient, userID)
	}

	text := fmt.Sprintf("%s\n\n%s", msg.Subject, msg.Body)
	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		n.logger.Warn("failed to send reminder",
			zap.String("user_id", userID),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	n.logger.Info("reminder sent",
		zap.String("user_id", userID),
		zap.Int64("chat_id", chatID))
	return nil
}

// LogNotifier writes reminders to the log. It is used when no bot token is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLog creates a log-only notifier
func NewLog(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the reminder
func (n *LogNotifier) Notify(_ context.Context, userID string, msg models.ReminderMessage) error {
	n.logger.Info("reminder",
		zap.String("user_id", userID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
