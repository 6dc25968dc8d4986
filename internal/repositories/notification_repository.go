package repositories

import (
	"context"

	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListForUser returns newest first.
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	Update(ctx context.Context, n *models.Notification) error
	Delete(ctx context.Context, id string) error
}

type notificationRepository struct {
	db docstore.Store
}

func NewNotificationRepository(db docstore.Store) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		n.ID = id
	}
	return mapErr(docstore.Insert(ctx, r.db, docstore.Notifications, n.ID, n), "notification")
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	n, err := docstore.Load[models.Notification](ctx, r.db, docstore.Notifications, id)
	if err != nil {
		return nil, mapErr(err, "notification")
	}
	return n, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	f := docstore.Filter{"userId": userID}
	if unreadOnly {
		f["read"] = false
	}
	list, err := docstore.Query[models.Notification](ctx, r.db, docstore.Notifications, f)
	if err != nil {
		return nil, mapErr(err, "notification")
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *models.Notification) error {
	return mapErr(docstore.Replace(ctx, r.db, docstore.Notifications, n.ID, n), "notification")
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	return mapErr(r.db.Delete(ctx, docstore.Notifications, id), "notification")
}
