package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
)

type recordingHub struct {
	published []models.Notification
}

func (h *recordingHub) Publish(n models.Notification) { h.published = append(h.published, n) }

func TestNotify_RespectsPreferences(t *testing.T) {
	ctx := context.Background()
	db := docstore.NewMemory()
	users := repositories.NewUserRepository(db)
	repo := repositories.NewNotificationRepository(db)
	push := &recordingPush{err: errors.New("bot offline")}
	hub := &recordingHub{}
	svc := NewNotificationService(repo, users, push, hub, zerolog.Nop())

	if err := users.Create(ctx, &models.User{
		ID:        "ann",
		Email:     "ann@example.com",
		PushToken: "777",
		Preferences: models.NotificationPreferences{
			Categories: map[string]bool{models.CategoryReminders: false},
			Events:     map[string]bool{string(models.NotifyTaskComment): false},
		},
	}); err != nil {
		t.Fatal(err)
	}

	svc.Notify(ctx, models.Notification{UserID: "ann", Type: models.NotifyTaskReminder, Title: "Reminder"})
	svc.Notify(ctx, models.Notification{UserID: "ann", Type: models.NotifyTaskComment, Title: "Comment"})
	svc.Notify(ctx, models.Notification{UserID: "ann", Type: models.NotifyTaskAssigned, Title: "Assigned"})
	svc.Notify(ctx, models.Notification{UserID: "ann", Type: models.NotifyTaskUpdated, Title: "Updated"})
	svc.Notify(ctx, models.Notification{UserID: "ghost", Type: models.NotifyTaskAssigned, Title: "Lost"})
	svc.Notify(ctx, models.Notification{Type: models.NotifyTaskAssigned, Title: "Nobody"})

	list, err := svc.List(ctx, Actor{ID: "ann"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("stored = %+v, want assigned and updated", list)
	}
	if len(hub.published) != 2 {
		t.Errorf("published = %d, want 2", len(hub.published))
	}
	if len(push.tokens) != 1 || push.tokens[0] != "777" {
		t.Errorf("pushes = %v, want one for the assignment", push.tokens)
	}
}

func TestNotifications_ReadAndDelete(t *testing.T) {
	ctx := context.Background()
	db := docstore.NewMemory()
	users := repositories.NewUserRepository(db)
	svc := NewNotificationService(repositories.NewNotificationRepository(db), users, nil, nil, zerolog.Nop())
	for _, id := range []string{"ann", "bob"} {
		if err := users.Create(ctx, &models.User{ID: id, Email: id + "@example.com"}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		svc.Notify(ctx, models.Notification{UserID: "ann", Type: models.NotifyTaskUpdated, Title: "Updated"})
	}

	list, err := svc.List(ctx, Actor{ID: "ann"}, true)
	if err != nil || len(list) != 3 {
		t.Fatalf("unread = %d, %v", len(list), err)
	}

	_, err = svc.MarkRead(ctx, Actor{ID: "bob"}, list[0].ID)
	wantKind(t, err, apperr.ErrNotFound)

	read, err := svc.MarkRead(ctx, Actor{ID: "ann"}, list[0].ID)
	if err != nil || !read.Read {
		t.Fatalf("MarkRead = %+v, %v", read, err)
	}
	n, err := svc.MarkAllRead(ctx, Actor{ID: "ann"})
	if err != nil || n != 2 {
		t.Errorf("MarkAllRead = %d, %v", n, err)
	}

	err = svc.Delete(ctx, Actor{ID: "bob"}, list[1].ID)
	wantKind(t, err, apperr.ErrNotFound)
	if err := svc.Delete(ctx, Actor{ID: "ann"}, list[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, err := svc.List(ctx, Actor{ID: "ann"}, false)
	if err != nil || len(all) != 2 {
		t.Errorf("remaining = %d, %v", len(all), err)
	}
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(repositories.NewUserRepository(docstore.NewMemory()), NewAuthService(), zerolog.Nop())

	user, err := svc.Register(ctx, models.RegisterRequest{Email: "Ann@Example.com", Password: "secret1", DisplayName: "Ann"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ann@example.com" || user.PasswordHash == "" || user.PasswordHash == "secret1" {
		t.Errorf("user = %+v", user)
	}
	_, err = svc.Register(ctx, models.RegisterRequest{Email: "ann@example.com", Password: "secret2", DisplayName: "Ann"})
	wantKind(t, err, apperr.ErrStaleState)
	_, err = svc.Register(ctx, models.RegisterRequest{Email: "cat@example.com", Password: "123", DisplayName: "Cat"})
	wantKind(t, err, apperr.ErrValidation)

	if _, err := svc.Authenticate(ctx, "ANN@example.com", "secret1"); err != nil {
		t.Errorf("Authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ann@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}

	actor := Actor{ID: user.ID}
	updated, err := svc.UpdatePreferences(ctx, actor, models.NotificationPreferences{
		Categories: map[string]bool{models.CategoryTeams: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Preferences.Allows(models.CategoryTeams, models.NotifyTeamInvitation) {
		t.Error("teams category still enabled")
	}
	updated, err = svc.SetPushToken(ctx, actor, " 42 ")
	if err != nil {
		t.Fatal(err)
	}
	if updated.PushToken != "42" {
		t.Errorf("PushToken = %q", updated.PushToken)
	}
	_, err = svc.UpdateProfile(ctx, actor, "  ")
	wantKind(t, err, apperr.ErrValidation)
}
