package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
	"teamtasks/internal/prioritize"
	"teamtasks/internal/repositories"
	"teamtasks/internal/utils"
)

const (
	telegramLinkTTL   = 30 * time.Minute
	telegramCodeBytes = 16
	telegramTitle     = "Team Tasks"
)

// TelegramService binds Telegram chats to accounts and answers bot commands.
type TelegramService interface {
	// RequestLink issues a code the user sends to the bot as "/link CODE".
	RequestLink(ctx context.Context, actor Actor) (*models.TelegramLink, error)
	// HandleMessage answers one incoming chat message.
	HandleMessage(ctx context.Context, chatID int64, text string) error
}

type telegramService struct {
	links repositories.TelegramLinkRepository
	users repositories.UserRepository
	tasks repositories.TaskRepository
	push  PushSender
	log   zerolog.Logger
	now   Clock
}

func NewTelegramService(links repositories.TelegramLinkRepository, users repositories.UserRepository,
	tasks repositories.TaskRepository, push PushSender, log zerolog.Logger) TelegramService {
	return &telegramService{links: links, users: users, tasks: tasks, push: push, log: log, now: systemClock}
}

func (s *telegramService) RequestLink(ctx context.Context, actor Actor) (*models.TelegramLink, error) {
	if actor.ID == "" {
		return nil, apperr.PermissionDenied("authentication required")
	}
	code, err := utils.NewToken(telegramCodeBytes)
	if err != nil {
		return nil, err
	}
	now := s.now()
	link := &models.TelegramLink{
		UserID:    actor.ID,
		Code:      strings.ToUpper(code),
		ExpiresAt: now.Add(telegramLinkTTL),
		CreatedAt: now,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", actor.ID).Msg("[telegram][link] code issued")
	return link, nil
}

func (s *telegramService) HandleMessage(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	var reply string
	switch {
	case strings.HasPrefix(text, "/start"):
		reply = "Hi! To receive task notifications here, send /link followed by the code from your profile."
	case strings.HasPrefix(text, "/link"):
		reply = s.link(ctx, chatID, strings.TrimPrefix(text, "/link"))
	case strings.HasPrefix(text, "/next"):
		reply = s.next(ctx, chatID)
	default:
		reply = "Unknown command. Use /link CODE or /next."
	}
	return s.push.Send(ctx, strconv.FormatInt(chatID, 10), telegramTitle, reply)
}

func (s *telegramService) link(ctx context.Context, chatID int64, raw string) string {
	code, ok := normalizeLinkCode(raw)
	if !ok {
		return fmt.Sprintf("Malformed code. Send exactly %d hex characters: /link CODE", 2*telegramCodeBytes)
	}
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Error().Err(err).Msg("[telegram][link] lookup")
		}
		return "This code is invalid or has expired. Request a new one in your profile."
	}
	now := s.now()
	if link.UsedAt != nil || now.After(link.ExpiresAt) {
		return "This code is invalid or has expired. Request a new one in your profile."
	}

	user, err := s.users.GetByID(ctx, link.UserID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", link.UserID).Msg("[telegram][link] load user")
		return "Could not link your account, please try again later."
	}
	user.PushToken = strconv.FormatInt(chatID, 10)
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("[telegram][link] update user")
		return "Could not link your account, please try again later."
	}
	link.UsedAt = &now
	if err := s.links.Update(ctx, link); err != nil {
		s.log.Warn().Err(err).Str("link_id", link.ID).Msg("[telegram][link] mark used")
	}
	s.log.Info().Str("user_id", user.ID).Int64("chat_id", chatID).Msg("[telegram][link] bound")
	return "Done! You will get task notifications in this chat. Send /next to see what to work on."
}

// next lists the user's top ranked open tasks.
func (s *telegramService) next(ctx context.Context, chatID int64) string {
	user, err := s.users.GetByPushToken(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		return "This chat is not linked yet. Send /link CODE first."
	}
	notDeleted := false
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{AssigneeID: &user.ID, IsDeleted: &notDeleted})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("[telegram][next] load tasks")
		return "Could not load your tasks."
	}
	ranked := prioritize.NextTasks(tasks, user.ID, s.now())
	if len(ranked) == 0 {
		return "You have no open tasks."
	}
	var b strings.Builder
	b.WriteString("Up next:\n")
	for _, r := range ranked {
		fmt.Fprintf(&b, "- %s (%s, due %s)\n", r.Task.Title, r.Task.Priority, r.Task.EndDate.Format(time.DateOnly))
	}
	return b.String()
}

// normalizeLinkCode strips quotes and punctuation users paste around the code.
func normalizeLinkCode(s string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if unicode.Is(unicode.Hex_Digit, r) {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) != 2*telegramCodeBytes {
		return "", false
	}
	return code, true
}
