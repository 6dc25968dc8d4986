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
)

type TeamService interface {
	Create(ctx context.Context, actor Actor, name, description string) (*models.Team, error)
	Get(ctx context.Context, actor Actor, id string) (*models.Team, error)
	ListForUser(ctx context.Context, actor Actor) ([]models.Team, error)
	Update(ctx context.Context, actor Actor, id string, patch models.TeamPatch) (*models.Team, error)

	AddMember(ctx context.Context, actor Actor, teamID, userID string, role models.TeamRole) (*models.Team, error)
	ChangeRole(ctx context.Context, actor Actor, teamID, userID string, role models.TeamRole) (*models.Team, error)
	RemoveMember(ctx context.Context, actor Actor, teamID, userID string) (*models.Team, error)
	Leave(ctx context.Context, actor Actor, teamID string) error

	Delete(ctx context.Context, actor Actor, id string) (*models.Team, error)
	Restore(ctx context.Context, actor Actor, id string) (*models.Team, error)
	PermanentlyDelete(ctx context.Context, actor Actor, id string) error
	ListTrash(ctx context.Context, actor Actor) ([]models.Team, error)
}

type teamService struct {
	repo     repositories.TeamRepository
	users    repositories.UserRepository
	notifier Notifier
	log      zerolog.Logger
	now      Clock
}

func NewTeamService(repo repositories.TeamRepository, users repositories.UserRepository, notifier Notifier, log zerolog.Logger) TeamService {
	return &teamService{repo: repo, users: users, notifier: notifier, log: log, now: systemClock}
}

// Create makes the creator the owner and first member.
func (s *teamService) Create(ctx context.Context, actor Actor, name, description string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("team name is required")
	}
	now := s.now()
	team := &models.Team{
		Name:        name,
		Description: description,
		OwnerID:     actor.ID,
		Members:     []models.TeamMember{{UserID: actor.ID, Role: models.TeamRoleOwner, JoinedAt: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Store(ctx, team); err != nil {
		return nil, err
	}
	s.log.Info().Str("team_id", team.ID).Str("user_id", actor.ID).Msg("[team][create] stored")
	return team, nil
}

func (s *teamService) Get(ctx context.Context, actor Actor, id string) (*models.Team, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.IsDeleted {
		if team.OwnerID == actor.ID {
			return team, nil
		}
		return nil, apperr.NotFound("team not found")
	}
	if !authz.IsTeamMember(team, actor.ID) {
		return nil, apperr.PermissionDenied("you are not a member of this team")
	}
	return team, nil
}

func (s *teamService) ListForUser(ctx context.Context, actor Actor) ([]models.Team, error) {
	return s.repo.ListForUser(ctx, actor.ID, false)
}

func (s *teamService) Update(ctx context.Context, actor Actor, id string, patch models.TeamPatch) (*models.Team, error) {
	team, err := s.managed(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	patch.Name.Apply(&team.Name)
	patch.Description.Apply(&team.Description)
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return nil, apperr.Validation("team name is required")
	}
	team.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) AddMember(ctx context.Context, actor Actor, teamID, userID string, role models.TeamRole) (*models.Team, error) {
	team, err := s.managed(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	if err := checkAssignableRole(team, actor.ID, role); err != nil {
		return nil, err
	}
	if authz.IsTeamMember(team, userID) {
		return nil, apperr.StaleState("user is already a member of the team")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	now := s.now()
	addTeamMember(team, userID, role, now)
	if err := s.repo.Update(ctx, team); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, models.NotifyTeamMemberAdded, "Added to team",
		fmt.Sprintf("%s added you to %q", actor.Name, team.Name), team.ID)
	return team, nil
}

func (s *teamService) ChangeRole(ctx context.Context, actor Actor, teamID, userID string, role models.TeamRole) (*models.Team, error) {
	team, err := s.managed(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	if userID == team.OwnerID {
		return nil, apperr.Validation("the owner's role cannot be changed")
	}
	if err := checkAssignableRole(team, actor.ID, role); err != nil {
		return nil, err
	}
	idx := memberIndex(team, userID)
	if idx < 0 {
		return nil, apperr.NotFound("member not found")
	}
	if team.Members[idx].Role == models.TeamRoleAdmin && team.OwnerID != actor.ID {
		return nil, apperr.PermissionDenied("only the owner can change an admin's role")
	}
	if team.Members[idx].Role == role {
		return team, nil
	}
	team.Members[idx].Role = role
	team.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, team); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, models.NotifyTeamRoleChanged, "Team role changed",
		fmt.Sprintf("Your role in %q is now %s", team.Name, role), team.ID)
	return team, nil
}

func (s *teamService) RemoveMember(ctx context.Context, actor Actor, teamID, userID string) (*models.Team, error) {
	team, err := s.managed(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	if userID == team.OwnerID {
		return nil, apperr.Validation("the team owner cannot be removed")
	}
	idx := memberIndex(team, userID)
	if idx < 0 {
		return nil, apperr.NotFound("member not found")
	}
	if team.Members[idx].Role == models.TeamRoleAdmin && team.OwnerID != actor.ID {
		return nil, apperr.PermissionDenied("only the owner can remove an admin")
	}
	team.Members = append(team.Members[:idx], team.Members[idx+1:]...)
	team.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, team); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, models.NotifyTeamMemberRemoved, "Removed from team",
		fmt.Sprintf("%s removed you from %q", actor.Name, team.Name), team.ID)
	return team, nil
}

func (s *teamService) Leave(ctx context.Context, actor Actor, teamID string) error {
	team, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID == actor.ID {
		return apperr.Validation("the owner cannot leave the team")
	}
	idx := memberIndex(team, actor.ID)
	if idx < 0 {
		return apperr.NotFound("member not found")
	}
	team.Members = append(team.Members[:idx], team.Members[idx+1:]...)
	team.UpdatedAt = s.now()
	return s.repo.Update(ctx, team)
}

func (s *teamService) Delete(ctx context.Context, actor Actor, id string) (*models.Team, error) {
	team, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if team.IsDeleted {
		return nil, apperr.StaleState("team is already in the trash")
	}
	now := s.now()
	team.IsDeleted = true
	team.DeletedAt = &now
	team.UpdatedAt = now
	if err := s.repo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) Restore(ctx context.Context, actor Actor, id string) (*models.Team, error) {
	team, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !team.IsDeleted {
		return nil, apperr.StaleState("team is not in the trash")
	}
	team.IsDeleted = false
	team.DeletedAt = nil
	team.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) PermanentlyDelete(ctx context.Context, actor Actor, id string) error {
	team, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, team.ID); err != nil {
		return err
	}
	s.log.Info().Str("team_id", team.ID).Msg("[team][purge] deleted")
	return nil
}

func (s *teamService) ListTrash(ctx context.Context, actor Actor) ([]models.Team, error) {
	teams, err := s.repo.ListForUser(ctx, actor.ID, true)
	if err != nil {
		return nil, err
	}
	out := teams[:0]
	for _, t := range teams {
		if t.OwnerID == actor.ID {
			out = append(out, t)
		}
	}
	return out, nil
}

// managed loads a live team the actor may administer.
func (s *teamService) managed(ctx context.Context, actor Actor, id string) (*models.Team, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.IsDeleted {
		return nil, apperr.StaleState("team is in the trash")
	}
	if !authz.CanManageTeam(team, actor.ID) {
		return nil, apperr.PermissionDenied("only team owners and admins can do this")
	}
	return team, nil
}

func (s *teamService) owned(ctx context.Context, actor Actor, id string) (*models.Team, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != actor.ID {
		return nil, apperr.PermissionDenied("only the team owner can do this")
	}
	return team, nil
}

func (s *teamService) notify(ctx context.Context, userID string, typ models.NotificationType, title, msg, teamID string) {
	s.notifier.Notify(ctx, models.Notification{UserID: userID, Type: typ, Title: title, Message: msg, TeamID: teamID})
}

// checkAssignableRole rejects the owner role and lets only the owner hand out
// admin.
func checkAssignableRole(team *models.Team, actorID string, role models.TeamRole) error {
	if !role.Valid() {
		return apperr.Validation("unknown team role %q", role)
	}
	if role == models.TeamRoleOwner {
		return apperr.Validation("a team has exactly one owner")
	}
	if role == models.TeamRoleAdmin && team.OwnerID != actorID {
		return apperr.PermissionDenied("only the owner can grant the admin role")
	}
	return nil
}

func memberIndex(team *models.Team, userID string) int {
	for i, m := range team.Members {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

func addTeamMember(team *models.Team, userID string, role models.TeamRole, now time.Time) {
	team.Members = append(team.Members, models.TeamMember{UserID: userID, Role: role, JoinedAt: now})
	team.UpdatedAt = now
}
