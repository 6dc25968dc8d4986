package repositories

import (
	"context"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type TelegramLinkRepository interface {
	Create(ctx context.Context, link *models.TelegramLink) error
	GetByCode(ctx context.Context, code string) (*models.TelegramLink, error)
	Update(ctx context.Context, link *models.TelegramLink) error
}

type telegramLinkRepository struct {
	db docstore.Store
}

func NewTelegramLinkRepository(db docstore.Store) TelegramLinkRepository {
	return &telegramLinkRepository{db: db}
}

func (r *telegramLinkRepository) Create(ctx context.Context, link *models.TelegramLink) error {
	if link.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		link.ID = id
	}
	return mapErr(docstore.Insert(ctx, r.db, docstore.TelegramLinks, link.ID, link), "telegram link")
}

func (r *telegramLinkRepository) GetByCode(ctx context.Context, code string) (*models.TelegramLink, error) {
	if code == "" {
		return nil, mapErr(docstore.ErrNotFound, "telegram link")
	}
	links, err := docstore.Query[models.TelegramLink](ctx, r.db, docstore.TelegramLinks, docstore.Filter{"code": code})
	if err != nil {
		return nil, mapErr(err, "telegram link")
	}
	if len(links) == 0 {
		return nil, mapErr(docstore.ErrNotFound, "telegram link")
	}
	return &links[0], nil
}

func (r *telegramLinkRepository) Update(ctx context.Context, link *models.TelegramLink) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.TelegramLinks, link.ID, link), "telegram link")
}
