package repositories

import (
	"context"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, pr *models.PasswordReset) error
	GetByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	Update(ctx context.Context, pr *models.PasswordReset) error
}

type passwordResetRepository struct {
	db docstore.Store
}

func NewPasswordResetRepository(db docstore.Store) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, pr *models.PasswordReset) error {
	if pr.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		pr.ID = id
	}
	return mapErr(docstore.Insert(ctx, r.db, docstore.PasswordResets, pr.ID, pr), "password reset")
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	if token == "" {
		return nil, mapErr(docstore.ErrNotFound, "password reset")
	}
	list, err := docstore.Query[models.PasswordReset](ctx, r.db, docstore.PasswordResets, docstore.Filter{"token": token})
	if err != nil {
		return nil, mapErr(err, "password reset")
	}
	if len(list) == 0 {
		return nil, mapErr(docstore.ErrNotFound, "password reset")
	}
	return &list[0], nil
}

func (r *passwordResetRepository) Update(ctx context.Context, pr *models.PasswordReset) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.PasswordResets, pr.ID, pr), "password reset")
}
