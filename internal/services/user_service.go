package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
)

const minPasswordLength = 6

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	// Authenticate returns ErrInvalidCredentials for an unknown email or a
	// wrong password alike.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, actor Actor, displayName string) (*models.User, error)
	UpdatePreferences(ctx context.Context, actor Actor, prefs models.NotificationPreferences) (*models.User, error)
	SetPushToken(ctx context.Context, actor Actor, token string) (*models.User, error)
}

type userService struct {
	repo repositories.UserRepository
	auth AuthService
	log  zerolog.Logger
	now  Clock
}

func NewUserService(repo repositories.UserRepository, auth AuthService, log zerolog.Logger) UserService {
	return &userService{repo: repo, auth: auth, log: log, now: systemClock}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.DisplayName)
	if email == "" || name == "" {
		return nil, apperr.Validation("email and display name are required")
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.StaleState("email is already registered")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &models.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("[user][register] created")
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) update(ctx context.Context, actor Actor, mutate func(*models.User) error) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := mutate(user); err != nil {
		return nil, err
	}
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor Actor, displayName string) (*models.User, error) {
	return s.update(ctx, actor, func(u *models.User) error {
		name := strings.TrimSpace(displayName)
		if name == "" {
			return apperr.Validation("display name is required")
		}
		u.DisplayName = name
		return nil
	})
}

func (s *userService) UpdatePreferences(ctx context.Context, actor Actor, prefs models.NotificationPreferences) (*models.User, error) {
	return s.update(ctx, actor, func(u *models.User) error {
		u.Preferences = prefs
		return nil
	})
}

// SetPushToken stores the device token; an empty token unregisters.
func (s *userService) SetPushToken(ctx context.Context, actor Actor, token string) (*models.User, error) {
	return s.update(ctx, actor, func(u *models.User) error {
		u.PushToken = strings.TrimSpace(token)
		return nil
	})
}
