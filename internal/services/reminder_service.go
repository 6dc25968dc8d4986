package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"teamtasks/internal/datecheck"
	"teamtasks/internal/models"
	"teamtasks/internal/repositories"
)

type ReminderService interface {
	// Scan fires every reminder due within the window around now and
	// returns how many were sent.
	Scan(ctx context.Context) (int, error)
}

type reminderService struct {
	tasks    repositories.TaskRepository
	users    repositories.UserRepository
	push     PushSender
	notifier Notifier
	log      zerolog.Logger
	now      Clock
}

func NewReminderService(tasks repositories.TaskRepository, users repositories.UserRepository, push PushSender,
	notifier Notifier, log zerolog.Logger) ReminderService {
	return &reminderService{tasks: tasks, users: users, push: push, notifier: notifier, log: log, now: systemClock}
}

func (s *reminderService) Scan(ctx context.Context) (int, error) {
	tasks, err := s.tasks.ListDueForReminder(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	sent := 0
	for i := range tasks {
		t := &tasks[i]
		fired := false
		for j := range t.Reminders {
			r := &t.Reminders[j]
			if !datecheck.Due(*t, *r, now) {
				continue
			}
			s.dispatch(ctx, t)
			r.Sent = true
			at := now
			r.SentAt = &at
			fired = true
			sent++
		}
		if !fired {
			continue
		}
		if err := s.tasks.Update(ctx, t); err != nil {
			return sent, fmt.Errorf("mark reminders of task %s: %w", t.ID, err)
		}
	}
	if sent > 0 {
		s.log.Info().Int("sent", sent).Msg("[reminder][scan] done")
	}
	return sent, nil
}

// dispatch pushes to the recipient's device and records the in-app
// notification, which the notifier gates on the user's preferences.
func (s *reminderService) dispatch(ctx context.Context, t *models.Task) {
	recipient := t.EffectiveAssignee()
	title := "Reminder"
	body := fmt.Sprintf("%q: %s - %s", t.Title, t.StartDate.Format("02.01.2006 15:04"), t.EndDate.Format("02.01.2006 15:04"))

	user, err := s.users.GetByID(ctx, recipient)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", recipient).Msg("[reminder][dispatch] recipient lookup failed")
	} else if user.PushToken != "" && s.push != nil {
		if err := s.push.Send(ctx, user.PushToken, title, body); err != nil {
			s.log.Warn().Err(err).Str("user_id", recipient).Msg("[reminder][push][err]")
		}
	}

	s.notifier.Notify(ctx, models.Notification{
		UserID:  recipient,
		Type:    models.NotifyTaskReminder,
		Title:   title,
		Message: body,
		TaskID:  t.ID,
	})
}
