package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/authz"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
	"teamtasks/internal/utils"
)

type InvitationService interface {
	CreateEmailInvitation(ctx context.Context, actor Actor, teamID, email string, role models.TeamRole) (*models.TeamInvitation, error)
	CreateLinkInvitation(ctx context.Context, actor Actor, teamID string, role models.TeamRole) (*models.TeamInvitation, error)
	ListForTeam(ctx context.Context, actor Actor, teamID string) ([]models.TeamInvitation, error)
	// Get previews an invitation by token.
	Get(ctx context.Context, token string) (*models.TeamInvitation, error)
	Accept(ctx context.Context, actor Actor, token string) (*models.Team, error)
	Reject(ctx context.Context, actor Actor, token string) (*models.TeamInvitation, error)
}

type InvitationOptions struct {
	TTL time.Duration
	// PublicURL prefixes invitation links, e.g. https://tasks.example.com.
	PublicURL string
}

type invitationService struct {
	repo     repositories.InvitationRepository
	teams    repositories.TeamRepository
	users    repositories.UserRepository
	emails   EmailService
	notifier Notifier
	opts     InvitationOptions
	log      zerolog.Logger
	now      Clock
}

func NewInvitationService(repo repositories.InvitationRepository, teams repositories.TeamRepository,
	users repositories.UserRepository, emails EmailService, notifier Notifier, opts InvitationOptions,
	log zerolog.Logger) InvitationService {
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &invitationService{
		repo:     repo,
		teams:    teams,
		users:    users,
		emails:   emails,
		notifier: notifier,
		opts:     opts,
		log:      log,
		now:      systemClock,
	}
}

func (s *invitationService) CreateEmailInvitation(ctx context.Context, actor Actor, teamID, email string, role models.TeamRole) (*models.TeamInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	inv, team, err := s.create(ctx, actor, teamID, models.InvitationEmail, role)
	if err != nil {
		return nil, err
	}
	if invitee, err := s.users.GetByEmail(ctx, email); err == nil && authz.IsTeamMember(team, invitee.ID) {
		return nil, apperr.StaleState("user is already a member of the team")
	}
	inv.Email = email
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	if s.emails != nil {
		if err := s.emails.SendInvitationEmail(email, team.Name, actor.Name, s.link(inv.Token)); err != nil {
			s.log.Warn().Err(err).Str("invitation_id", inv.ID).Msg("[invitation][email][err]")
		}
	}
	if invitee, err := s.users.GetByEmail(ctx, email); err == nil {
		s.notifier.Notify(ctx, models.Notification{
			UserID:       invitee.ID,
			Type:         models.NotifyTeamInvitation,
			Title:        "Team invitation",
			Message:      fmt.Sprintf("%s invited you to %q", actor.Name, team.Name),
			TeamID:       team.ID,
			InvitationID: inv.ID,
		})
	}
	return inv, nil
}

func (s *invitationService) CreateLinkInvitation(ctx context.Context, actor Actor, teamID string, role models.TeamRole) (*models.TeamInvitation, error) {
	inv, _, err := s.create(ctx, actor, teamID, models.InvitationLink, role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// create builds an unsaved pending invitation after checking the inviter.
func (s *invitationService) create(ctx context.Context, actor Actor, teamID string, typ models.InvitationType, role models.TeamRole) (*models.TeamInvitation, *models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	if team.IsDeleted {
		return nil, nil, apperr.StaleState("team is in the trash")
	}
	if !authz.CanManageTeam(team, actor.ID) {
		return nil, nil, apperr.PermissionDenied("only team owners and admins can invite")
	}
	if role == "" {
		role = models.TeamRoleMember
	}
	if err := checkAssignableRole(team, actor.ID, role); err != nil {
		return nil, nil, err
	}
	token, err := utils.NewToken(utils.InvitationTokenBytes)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	return &models.TeamInvitation{
		Token:     token,
		TeamID:    team.ID,
		TeamName:  team.Name,
		InviterID: actor.ID,
		Type:      typ,
		Role:      role,
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(s.opts.TTL),
		CreatedAt: now,
		UpdatedAt: now,
	}, team, nil
}

func (s *invitationService) ListForTeam(ctx context.Context, actor Actor, teamID string) ([]models.TeamInvitation, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageTeam(team, actor.ID) {
		return nil, apperr.PermissionDenied("only team owners and admins can see invitations")
	}
	return s.repo.ListByTeam(ctx, teamID)
}

func (s *invitationService) Get(ctx context.Context, token string) (*models.TeamInvitation, error) {
	inv, err := s.repo.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if err := s.expire(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invitationService) Accept(ctx context.Context, actor Actor, token string) (*models.Team, error) {
	inv, err := s.pending(ctx, actor, token)
	if err != nil {
		return nil, err
	}
	team, err := s.teams.FindByID(ctx, inv.TeamID)
	if err != nil {
		return nil, err
	}
	if team.IsDeleted {
		return nil, apperr.StaleState("team is in the trash")
	}

	now := s.now()
	if !authz.IsTeamMember(team, actor.ID) {
		addTeamMember(team, actor.ID, inv.Role, now)
		if err := s.teams.Update(ctx, team); err != nil {
			return nil, err
		}
	}
	inv.Status = models.InvitationAccepted
	inv.AcceptedBy = actor.ID
	inv.UpdatedAt = now
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.log.Info().Str("invitation_id", inv.ID).Str("user_id", actor.ID).Msg("[invitation][accept] joined team")

	s.notifier.Notify(ctx, models.Notification{
		UserID:       inv.InviterID,
		Type:         models.NotifyInvitationAccepted,
		Title:        "Invitation accepted",
		Message:      fmt.Sprintf("%s joined %q", actor.Name, team.Name),
		TeamID:       team.ID,
		InvitationID: inv.ID,
	})
	return team, nil
}

func (s *invitationService) Reject(ctx context.Context, actor Actor, token string) (*models.TeamInvitation, error) {
	inv, err := s.pending(ctx, actor, token)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvitationRejected
	inv.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// pending loads an invitation the actor may still answer. Email invitations
// are bound to the invited address.
func (s *invitationService) pending(ctx context.Context, actor Actor, token string) (*models.TeamInvitation, error) {
	inv, err := s.repo.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if err := s.expire(ctx, inv); err != nil {
		return nil, err
	}
	if inv.Status == models.InvitationExpired {
		return nil, apperr.StaleState("invitation has expired")
	}
	if inv.Status != models.InvitationPending {
		return nil, apperr.StaleState("invitation was already %s", inv.Status)
	}
	if inv.Type == models.InvitationEmail {
		user, err := s.users.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(user.Email, inv.Email) {
			return nil, apperr.PermissionDenied("this invitation was sent to another email address")
		}
	}
	return inv, nil
}

// expire marks a pending invitation past its deadline as expired.
func (s *invitationService) expire(ctx context.Context, inv *models.TeamInvitation) error {
	now := s.now()
	if inv.Status != models.InvitationPending || !now.After(inv.ExpiresAt) {
		return nil
	}
	inv.Status = models.InvitationExpired
	inv.UpdatedAt = now
	return s.repo.Update(ctx, inv)
}

func (s *invitationService) link(token string) string {
	return strings.TrimRight(s.opts.PublicURL, "/") + "/invitations/" + token
}
