package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
	"teamtasks/internal/utils"
)

const passwordResetTTL = time.Hour

type PasswordResetService interface {
	// RequestReset mails a reset link. Unknown emails succeed silently.
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	users     repositories.UserRepository
	repo      repositories.PasswordResetRepository
	emails    EmailService
	auth      AuthService
	publicURL string
	log       zerolog.Logger
	now       Clock
}

func NewPasswordResetService(users repositories.UserRepository, repo repositories.PasswordResetRepository,
	emails EmailService, auth AuthService, publicURL string, log zerolog.Logger) PasswordResetService {
	return &passwordResetService{
		users:     users,
		repo:      repo,
		emails:    emails,
		auth:      auth,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
		now:       systemClock,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return apperr.Validation("email is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.Info().Str("email", email).Msg("[password-reset][request] unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := utils.NewToken(32)
	if err != nil {
		return err
	}
	now := s.now()
	pr := &models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(passwordResetTTL),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return err
	}
	if err := s.emails.SendPasswordResetEmail(user.Email, s.publicURL+"/reset-password?token="+token); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("[password-reset][email][err]")
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Validation("token is required")
	}
	if len(strings.TrimSpace(newPassword)) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}

	pr, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	now := s.now()
	if pr.UsedAt != nil {
		return apperr.StaleState("reset link was already used")
	}
	if now.After(pr.ExpiresAt) {
		return apperr.StaleState("reset link has expired")
	}

	user, err := s.users.GetByID(ctx, pr.UserID)
	if err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	pr.UsedAt = &now
	if err := s.repo.Update(ctx, pr); err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Msg("[password-reset][reset] done")
	return nil
}
