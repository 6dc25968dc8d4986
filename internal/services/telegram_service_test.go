package services

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"teamtasks/internal/apperr"
	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
)

func TestTelegramLinkFlow(t *testing.T) {
	f := setupServices(t)
	links := repositories.NewTelegramLinkRepository(docstore.NewMemory())
	svc := NewTelegramService(links, f.users, f.tasks, f.push, zerolog.Nop()).(*telegramService)
	svc.now = func() time.Time { return f.now }

	_, err := svc.RequestLink(f.ctx, Actor{})
	wantKind(t, err, apperr.ErrPermissionDenied)

	link, err := svc.RequestLink(f.ctx, ann)
	if err != nil {
		t.Fatalf("RequestLink: %v", err)
	}
	if len(link.Code) != 32 || link.Code != strings.ToUpper(link.Code) {
		t.Fatalf("code = %q", link.Code)
	}
	if want := f.now.Add(30 * time.Minute); !link.ExpiresAt.Equal(want) {
		t.Errorf("expires = %v, want %v", link.ExpiresAt, want)
	}

	if err := svc.HandleMessage(f.ctx, 4242, "/next"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.push.last(), "not linked") {
		t.Errorf("unlinked /next reply = %q", f.push.last())
	}

	if err := svc.HandleMessage(f.ctx, 4242, "/link nonsense"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.push.last(), "Malformed") {
		t.Errorf("bad code reply = %q", f.push.last())
	}

	// pasted with quotes and lower case
	if err := svc.HandleMessage(f.ctx, 4242, `/link "`+strings.ToLower(link.Code)+`"`); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(f.push.last(), "Done!") {
		t.Fatalf("link reply = %q", f.push.last())
	}
	if got := f.push.tokens[len(f.push.tokens)-1]; got != "4242" {
		t.Errorf("reply sent to %q", got)
	}
	user, err := f.users.GetByID(f.ctx, ann.ID)
	if err != nil {
		t.Fatal(err)
	}
	if user.PushToken != "4242" {
		t.Errorf("push token = %q", user.PushToken)
	}

	if err := svc.HandleMessage(f.ctx, 5555, "/link "+link.Code); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.push.last(), "invalid or has expired") {
		t.Errorf("reused code reply = %q", f.push.last())
	}

	for _, task := range []models.Task{
		{Title: "Later", AssigneeID: ann.ID, Status: models.StatusNotStarted, Priority: models.PriorityLow,
			StartDate: day(2024, time.January, 5), EndDate: day(2024, time.January, 20)},
		{Title: "Soon", AssigneeID: ann.ID, Status: models.StatusInProgress, Priority: models.PriorityUrgent,
			StartDate: day(2024, time.January, 1), EndDate: day(2024, time.January, 2)},
		{Title: "Finished", AssigneeID: ann.ID, Status: models.StatusCompleted, Priority: models.PriorityUrgent,
			StartDate: day(2024, time.January, 1), EndDate: day(2024, time.January, 2)},
	} {
		task := task
		if err := f.tasks.Store(f.ctx, &task); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.HandleMessage(f.ctx, 4242, "/next"); err != nil {
		t.Fatal(err)
	}
	reply := f.push.last()
	if !strings.Contains(reply, "Soon") || !strings.Contains(reply, "Later") || strings.Contains(reply, "Finished") {
		t.Errorf("/next reply = %q", reply)
	}
	if strings.Index(reply, "Soon") > strings.Index(reply, "Later") {
		t.Errorf("urgent task not first: %q", reply)
	}
}

func TestTelegramLinkExpired(t *testing.T) {
	f := setupServices(t)
	svc := NewTelegramService(repositories.NewTelegramLinkRepository(docstore.NewMemory()),
		f.users, f.tasks, f.push, zerolog.Nop()).(*telegramService)
	svc.now = func() time.Time { return f.now }

	link, err := svc.RequestLink(f.ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	f.now = f.now.Add(31 * time.Minute)
	if err := svc.HandleMessage(f.ctx, 7, "/link "+link.Code); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.push.last(), "invalid or has expired") {
		t.Errorf("reply = %q", f.push.last())
	}
	user, _ := f.users.GetByID(f.ctx, bob.ID)
	if user.PushToken != "" {
		t.Errorf("push token = %q", user.PushToken)
	}
}
