package services

import (
	"testing"
	"time"

	"teamtasks/internal/models"
)

func TestReminderScan(t *testing.T) {
	f := setupServices(t)
	user, err := f.users.GetByID(f.ctx, ann.ID)
	if err != nil {
		t.Fatal(err)
	}
	user.PushToken = "12345"
	if err := f.users.Update(f.ctx, user); err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
	task, err := f.taskSvc.Create(f.ctx, ann, TaskInput{
		Title:     "Dentist",
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Reminders: []models.Reminder{
			{Type: models.ReminderRelative, Offset: 30, Unit: models.ReminderMinutes},
			{Type: models.ReminderRelative, Offset: 1, Unit: models.ReminderHours},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	f.now = time.Date(2024, time.January, 2, 9, 29, 30, 0, time.UTC)
	sent, err := f.reminderSvc.Scan(f.ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(f.push.tokens) != 1 || f.push.tokens[0] != "12345" {
		t.Errorf("pushes = %v", f.push.tokens)
	}
	if got := f.notifier.ofType(models.NotifyTaskReminder); len(got) != 1 || got[0].TaskID != task.ID {
		t.Errorf("reminder notifications = %+v", got)
	}

	stored, err := f.tasks.FindByID(f.ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Reminders[0].Sent || stored.Reminders[0].SentAt == nil {
		t.Errorf("first reminder not marked: %+v", stored.Reminders[0])
	}
	if stored.Reminders[1].Sent {
		t.Errorf("missed reminder marked sent: %+v", stored.Reminders[1])
	}

	f.now = f.now.Add(20 * time.Second)
	if sent, err = f.reminderSvc.Scan(f.ctx); err != nil || sent != 0 {
		t.Errorf("second scan = %d, %v", sent, err)
	}
}

func TestReminderScan_RearmedAfterReschedule(t *testing.T) {
	f := setupServices(t)
	start := time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
	task, err := f.taskSvc.Create(f.ctx, ann, TaskInput{
		Title:     "Call",
		StartDate: start,
		Reminders: []models.Reminder{{Type: models.ReminderRelative, Offset: 10, Unit: models.ReminderMinutes}},
	})
	if err != nil {
		t.Fatal(err)
	}
	f.now = start.Add(-10 * time.Minute)
	if sent, err := f.reminderSvc.Scan(f.ctx); err != nil || sent != 1 {
		t.Fatalf("scan = %d, %v", sent, err)
	}

	later := start.Add(2 * time.Hour)
	if _, err := f.taskSvc.Update(f.ctx, ann, task.ID, models.TaskPatch{
		StartDate: models.Set(later),
		EndDate:   models.Set(later),
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	f.now = later.Add(-10 * time.Minute)
	if sent, err := f.reminderSvc.Scan(f.ctx); err != nil || sent != 1 {
		t.Errorf("scan after reschedule = %d, %v", sent, err)
	}
}
