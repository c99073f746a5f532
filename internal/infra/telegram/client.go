// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements notify.Notifier using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot    *telebot.Bot
	chatID int64
}

func NewTelebotAdapter(b *telebot.Bot, chatID int64) *TelebotAdapter {
	return &TelebotAdapter{bot: b, chatID: chatID}
}

// Notify sends text to the configured chat.
func (tba *TelebotAdapter) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipient := &telebot.Chat{ID: tba.chatID}
	if _, err := tba.bot.Send(recipient, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("send telegram message to %d: %w", tba.chatID, err)
	}
	return nil
}
