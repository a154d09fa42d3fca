package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobtrawler/internal/listing"
)

// Telegram pushes one message per new listing to a chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authenticates the bot with the given token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// ListingFound implements Notifier.
func (t *Telegram) ListingFound(_ context.Context, rec listing.Record) error {
	salary := rec.Salary
	if salary == "" {
		salary = "not listed"
	}
	text := fmt.Sprintf(
		"<b>%s</b>\n%s\nSalary: %s\nBenefits: %s",
		html.EscapeString(rec.Title),
		html.EscapeString(rec.Location),
		html.EscapeString(salary),
		html.EscapeString(rec.Benefits),
	)
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
