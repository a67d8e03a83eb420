package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"

	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/models"
	"telemetry-bridge/internal/utils"
)

// TelegramSender mirrors alerts to one or more operator chats. Optional:
// constructed only when a bot token is configured. The bot client is
// long-lived and built once here, not per send.
type TelegramSender struct {
	bot     *bot.Bot
	chatIDs []int64
	logger  *logging.Logger
}

func NewTelegramSender(token string, chatIDs []int64, logger *logging.Logger) (*TelegramSender, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if len(chatIDs) == 0 {
		return nil, fmt.Errorf("no telegram chat ids configured")
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return &TelegramSender{bot: b, chatIDs: chatIDs, logger: logger}, nil
}

// Send delivers the alert to every configured chat.
func (t *TelegramSender) Send(ctx context.Context, notif models.Notification) error {
	text := fmt.Sprintf("*%s*\n%s", notif.Title, notif.Body)

	return utils.Retry(t.logger, 3, time.Second, func() error {
		for _, chatID := range t.chatIDs {
			params := &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      text,
				ParseMode: "Markdown",
			}
			if _, err := t.bot.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", chatID, err)
			}
		}
		return nil
	})
}
