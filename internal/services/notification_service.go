package services

import (
	"context"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
)

// Notifier delivers a notification without reporting failure to the caller;
// the operation that triggered it has already succeeded.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Publisher pushes a stored notification to connected clients.
type Publisher interface {
	Publish(n models.Notification)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, actor Actor, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, actor Actor, id string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, actor Actor) (int, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type notificationService struct {
	repo  repositories.NotificationRepository
	users repositories.UserRepository
	push  PushSender
	hub   Publisher
	log   zerolog.Logger
	now   Clock
}

// pushed lists the event types that also go out as a push message.
var pushed = map[models.NotificationType]bool{
	models.NotifyTaskAssigned:   true,
	models.NotifyTeamInvitation: true,
	models.NotifyTaskOverdue:    true,
}

func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository,
	push PushSender, hub Publisher, log zerolog.Logger) NotificationService {
	return &notificationService{
		repo:  repo,
		users: users,
		push:  push,
		hub:   hub,
		log:   log,
		now:   systemClock,
	}
}

// Notify stores n for its recipient when the recipient's preferences allow
// the event, then fans it out.
func (s *notificationService) Notify(ctx context.Context, n models.Notification) {
	if n.UserID == "" {
		return
	}
	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", n.UserID).Str("type", string(n.Type)).Msg("[notify][skip] recipient lookup failed")
		return
	}
	if !user.Preferences.Allows(n.Type.Category(), n.Type) {
		s.log.Debug().Str("user_id", n.UserID).Str("type", string(n.Type)).Msg("[notify][skip] disabled by preferences")
		return
	}

	n.Read = false
	n.CreatedAt = s.now()
	if err := s.repo.Create(ctx, &n); err != nil {
		s.log.Error().Err(err).Str("user_id", n.UserID).Msg("[notify][create][err]")
		return
	}
	if s.hub != nil {
		s.hub.Publish(n)
	}
	if pushed[n.Type] && s.push != nil && user.PushToken != "" {
		if err := s.push.Send(ctx, user.PushToken, n.Title, n.Message); err != nil {
			s.log.Warn().Err(err).Str("user_id", n.UserID).Msg("[notify][push][err]")
		}
	}
}

func (s *notificationService) List(ctx context.Context, actor Actor, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.ListForUser(ctx, actor.ID, unreadOnly)
}

func (s *notificationService) own(ctx context.Context, actor Actor, id string) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actor.ID {
		// Someone else's notification does not exist for this caller.
		return nil, apperr.NotFound("notification not found")
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id string) (*models.Notification, error) {
	n, err := s.own(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) (int, error) {
	unread, err := s.repo.ListForUser(ctx, actor.ID, true)
	if err != nil {
		return 0, err
	}
	for i := range unread {
		unread[i].Read = true
		if err := s.repo.Update(ctx, &unread[i]); err != nil {
			return i, err
		}
	}
	return len(unread), nil
}

func (s *notificationService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.own(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
