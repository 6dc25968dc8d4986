package datecheck

import (
	"time"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
)

// ReminderWindow is how far a scan may be from a reminder's trigger time and
// still fire it.
const ReminderWindow = 60 * time.Second

// TriggerAt resolves when a reminder should fire. Relative reminders count
// back from the task start or end.
func TriggerAt(t models.Task, r models.Reminder) (time.Time, bool) {
	switch r.Type {
	case models.ReminderAbsolute:
		if r.At == nil {
			return time.Time{}, false
		}
		return *r.At, true
	case models.ReminderRelative:
		base := t.StartDate
		if r.Anchor == models.AnchorEnd {
			base = t.EndDate
		}
		if base.IsZero() {
			return time.Time{}, false
		}
		return base.Add(-offset(r)), true
	}
	return time.Time{}, false
}

// Due reports whether an unsent reminder falls inside the window around now.
func Due(t models.Task, r models.Reminder, now time.Time) bool {
	if r.Sent {
		return false
	}
	at, ok := TriggerAt(t, r)
	if !ok {
		return false
	}
	d := now.Sub(at)
	return d >= -ReminderWindow && d <= ReminderWindow
}

// ValidateReminder checks the fields required by the reminder's type.
func ValidateReminder(r models.Reminder) error {
	switch r.Type {
	case models.ReminderAbsolute:
		if r.At == nil {
			return apperr.Validation("absolute reminder needs a time")
		}
	case models.ReminderRelative:
		if r.Offset < 0 {
			return apperr.Validation("reminder offset must not be negative")
		}
		switch r.Unit {
		case models.ReminderMinutes, models.ReminderHours, models.ReminderDays:
		default:
			return apperr.Validation("unknown reminder unit %q", r.Unit)
		}
		if r.Anchor != "" && r.Anchor != models.AnchorStart && r.Anchor != models.AnchorEnd {
			return apperr.Validation("unknown reminder anchor %q", r.Anchor)
		}
	default:
		return apperr.Validation("unknown reminder type %q", r.Type)
	}
	return nil
}

func offset(r models.Reminder) time.Duration {
	n := time.Duration(r.Offset)
	switch r.Unit {
	case models.ReminderHours:
		return n * time.Hour
	case models.ReminderDays:
		return n * 24 * time.Hour
	}
	return n * time.Minute
}
