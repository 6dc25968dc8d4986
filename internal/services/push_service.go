package services

import (
	"context"
	"fmt"
	"html"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// PushSender delivers a short message to a device token. Tokens are Telegram
// chat ids.
type PushSender interface {
	Send(ctx context.Context, token, title, body string) error
}

type telegramPush struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

// NewPushSender connects the Telegram bot. Without a bot token pushes are
// logged and dropped.
func NewPushSender(botToken string, log zerolog.Logger) (PushSender, error) {
	if botToken == "" {
		return noopPush{log: log}, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("[push] telegram bot authorized")
	return &telegramPush{bot: bot, log: log}, nil
}

func (p *telegramPush) Send(ctx context.Context, token, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(token, 10, 64)
	if err != nil || chatID == 0 {
		return fmt.Errorf("invalid push token %q", token)
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(body)))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	p.log.Debug().Int64("chat_id", chatID).Msg("[push][send] ok")
	return nil
}

type noopPush struct {
	log zerolog.Logger
}

func (p noopPush) Send(_ context.Context, token, title, _ string) error {
	p.log.Debug().Str("token", token).Str("title", title).Msg("[push][skip] no bot configured")
	return nil
}
