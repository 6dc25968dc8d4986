package repositories

import (
	"context"
	"strings"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByPushToken finds the user a Telegram chat is bound to.
	GetByPushToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db docstore.Store
}

func NewUserRepository(db docstore.Store) UserRepository {
	return &userRepository{db: db}
}

// Create stores the email lower-cased.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		user.ID = id
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return mapErr(docstore.Insert(ctx, r.db, docstore.Users, user.ID, user), "user")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := docstore.Load[models.User](ctx, r.db, docstore.Users, id)
	if err != nil {
		return nil, mapErr(err, "user")
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, mapErr(docstore.ErrNotFound, "user")
	}
	users, err := docstore.Query[models.User](ctx, r.db, docstore.Users, docstore.Filter{"email": email})
	if err != nil {
		return nil, mapErr(err, "user")
	}
	if len(users) == 0 {
		return nil, mapErr(docstore.ErrNotFound, "user")
	}
	return &users[0], nil
}

func (r *userRepository) GetByPushToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, mapErr(docstore.ErrNotFound, "user")
	}
	users, err := docstore.Query[models.User](ctx, r.db, docstore.Users, docstore.Filter{"pushToken": token})
	if err != nil {
		return nil, mapErr(err, "user")
	}
	if len(users) == 0 {
		return nil, mapErr(docstore.ErrNotFound, "user")
	}
	return &users[0], nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.Users, user.ID, user), "user")
}
