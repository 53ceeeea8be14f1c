// Package bot delivers digest messages to a Telegram chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramAPI interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Bot sends HTML messages through the Telegram Bot API.
type Bot struct {
	api telegramAPI
	log *slog.Logger
}

// New creates a Bot for the given token. No request is made until the first
// message is sent.
func New(token string, log *slog.Logger) *Bot {
	api := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: 30 * time.Second},
		Buffer: 100,
	}
	api.SetAPIEndpoint(tgbotapi.APIEndpoint)
	return &Bot{api: api, log: log}
}

// SendMessage posts text to chatID, into the forum topic threadID when it is
// non-nil. Text longer than one Telegram message is sent as several
// messages split on line boundaries; the first failure aborts the rest.
func (b *Bot) SendMessage(ctx context.Context, chatID, text string, threadID *int) error {
	chunks := splitMessage(text, MaxMessageLength)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("send message: %w", err)
		}

		params := tgbotapi.Params{}
		params.AddNonEmpty("chat_id", chatID)
		params.AddNonEmpty("text", chunk)
		params.AddNonEmpty("parse_mode", tgbotapi.ModeHTML)
		params.AddBool("disable_web_page_preview", true)
		if threadID != nil {
			params.AddNonEmpty("message_thread_id", strconv.Itoa(*threadID))
		}

		if _, err := b.api.MakeRequest("sendMessage", params); err != nil {
			return fmt.Errorf("send message part %d/%d: %w", i+1, len(chunks), err)
		}
		b.log.Debug("message sent", "chat_id", chatID, "part", i+1, "parts", len(chunks), "chars", len([]rune(chunk)))
	}
	return nil
}
