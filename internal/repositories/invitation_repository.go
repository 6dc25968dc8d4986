package repositories

import (
	"context"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *models.TeamInvitation) error
	GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error)
	ListByTeam(ctx context.Context, teamID string) ([]models.TeamInvitation, error)
	Update(ctx context.Context, inv *models.TeamInvitation) error
}

type invitationRepository struct {
	db docstore.Store
}

func NewInvitationRepository(db docstore.Store) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *models.TeamInvitation) error {
	if inv.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		inv.ID = id
	}
	return mapErr(docstore.Insert(ctx, r.db, docstore.TeamInvitations, inv.ID, inv), "invitation")
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	if token == "" {
		return nil, mapErr(docstore.ErrNotFound, "invitation")
	}
	invs, err := docstore.Query[models.TeamInvitation](ctx, r.db, docstore.TeamInvitations, docstore.Filter{"token": token})
	if err != nil {
		return nil, mapErr(err, "invitation")
	}
	if len(invs) == 0 {
		return nil, mapErr(docstore.ErrNotFound, "invitation")
	}
	return &invs[0], nil
}

func (r *invitationRepository) ListByTeam(ctx context.Context, teamID string) ([]models.TeamInvitation, error) {
	invs, err := docstore.Query[models.TeamInvitation](ctx, r.db, docstore.TeamInvitations, docstore.Filter{"teamId": teamID})
	return invs, mapErr(err, "invitation")
}

func (r *invitationRepository) Update(ctx context.Context, inv *models.TeamInvitation) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.TeamInvitations, inv.ID, inv), "invitation")
}
