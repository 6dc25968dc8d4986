package repositories

import (
	"context"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type TeamRepository interface {
	Store(ctx context.Context, t *models.Team) error
	FindByID(ctx context.Context, id string) (*models.Team, error)
	// ListForUser returns the teams the user owns or belongs to.
	ListForUser(ctx context.Context, userID string, deleted bool) ([]models.Team, error)
	Update(ctx context.Context, t *models.Team) error
	Delete(ctx context.Context, id string) error
}

type teamRepository struct {
	db docstore.Store
}

func NewTeamRepository(db docstore.Store) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Store(ctx context.Context, t *models.Team) error {
	if t.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		t.ID = id
	}
	return mapErr(docstore.Insert(ctx, r.db, docstore.Teams, t.ID, t), "team")
}

func (r *teamRepository) FindByID(ctx context.Context, id string) (*models.Team, error) {
	t, err := docstore.Load[models.Team](ctx, r.db, docstore.Teams, id)
	if err != nil {
		return nil, mapErr(err, "team")
	}
	return t, nil
}

// Membership lives inside the team document, so the filter is applied here.
func (r *teamRepository) ListForUser(ctx context.Context, userID string, deleted bool) ([]models.Team, error) {
	teams, err := docstore.Query[models.Team](ctx, r.db, docstore.Teams, docstore.Filter{"isDeleted": deleted})
	if err != nil {
		return nil, mapErr(err, "team")
	}
	out := teams[:0]
	for _, t := range teams {
		if t.OwnerID == userID {
			out = append(out, t)
			continue
		}
		if _, ok := t.MemberRole(userID); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *teamRepository) Update(ctx context.Context, t *models.Team) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.Teams, t.ID, t), "team")
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	return mapErr(r.db.Delete(ctx, docstore.Teams, id), "team")
}
