package datecheck

import (
	"testing"
	"time"

	"teamtasks/internal/models"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestCheckTask_StartRule(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		now   time.Time
		want  bool
	}{
		{"date only, same day", at(10, 0, 0), at(10, 0, 1), true},
		{"date only, day before", at(10, 0, 0), at(9, 23, 59), false},
		{"explicit time not reached", at(10, 14, 0), at(10, 13, 59), false},
		{"explicit time reached", at(10, 14, 0), at(10, 14, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := models.Task{Status: models.StatusNotStarted, StartDate: tt.start, EndDate: tt.start.AddDate(0, 0, 5)}
			if got := CheckTask(task, tt.now).StartElapsed; got != tt.want {
				t.Errorf("StartElapsed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckTask_OnlyNotStartedTasksStart(t *testing.T) {
	task := models.Task{Status: models.StatusInProgress, StartDate: at(1, 0, 0), EndDate: at(20, 0, 0)}
	if CheckTask(task, at(5, 9, 0)).StartElapsed {
		t.Error("in-progress task must not trigger the start rule")
	}
}

func TestCheckTask_OverdueUsesEndOfDay(t *testing.T) {
	task := models.Task{Status: models.StatusInProgress, StartDate: at(1, 0, 0), EndDate: at(10, 0, 0)}

	if CheckTask(task, at(10, 23, 59)).Overdue {
		t.Error("task is not overdue before the end of its last day")
	}
	if !CheckTask(task, at(11, 0, 0)).Overdue {
		t.Error("task is overdue the next day")
	}

	task.EndDate = at(10, 12, 0)
	if !CheckTask(task, at(10, 12, 1)).Overdue {
		t.Error("explicit end time must be honoured")
	}

	task.Status = models.StatusCompleted
	if CheckTask(task, at(20, 0, 0)).Overdue {
		t.Error("completed task is never overdue")
	}
}

func TestCheckTask_OncePerCalendarDay(t *testing.T) {
	task := models.Task{Status: models.StatusNotStarted, StartDate: at(10, 0, 0), EndDate: at(12, 0, 0)}
	now := at(10, 8, 0)

	first := CheckTask(task, now)
	if !first.ActionNeeded() || !first.MarkChecked() {
		t.Fatalf("first = %+v, want action", first)
	}
	task.DateCheckedAt = &now

	second := CheckTask(task, at(10, 22, 0))
	if second.ActionNeeded() || !second.AlreadyChecked || second.MarkChecked() {
		t.Errorf("second = %+v, want no action", second)
	}

	if next := CheckTask(task, at(11, 0, 5)); next.AlreadyChecked {
		t.Errorf("next day = %+v, want a fresh check", next)
	}
}

func TestCheckTask_CalendarDayFollowsNowLocation(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	checked := time.Date(2024, time.March, 10, 20, 0, 0, 0, time.UTC) // 11th in UTC+5
	task := models.Task{Status: models.StatusNotStarted, StartDate: at(1, 0, 0), EndDate: at(30, 0, 0), DateCheckedAt: &checked}

	if !CheckTask(task, time.Date(2024, time.March, 11, 9, 0, 0, 0, zone)).AlreadyChecked {
		t.Error("check on the same local day must be gated")
	}
}

func TestCheckTask_NothingToDo(t *testing.T) {
	task := models.Task{Status: models.StatusNotStarted, StartDate: at(20, 0, 0), EndDate: at(21, 0, 0)}
	res := CheckTask(task, at(10, 0, 0))
	if res.ActionNeeded() || res.MarkChecked() {
		t.Errorf("res = %+v, want nothing", res)
	}
}

func TestCheckProject(t *testing.T) {
	start, end := at(1, 0, 0), at(5, 0, 0)
	p := models.Project{Status: models.ProjectNotStarted, StartDate: &start, EndDate: &end}

	res := CheckProject(p, at(6, 10, 0))
	if !res.StartElapsed || !res.Overdue {
		t.Errorf("res = %+v, want start and overdue", res)
	}

	now := at(6, 10, 0)
	p.DateCheckedAt = &now
	if res := CheckProject(p, at(6, 18, 0)); !res.AlreadyChecked {
		t.Errorf("res = %+v, want gated", res)
	}

	if res := CheckProject(models.Project{Status: models.ProjectNotStarted}, at(6, 0, 0)); res.ActionNeeded() {
		t.Errorf("undated project = %+v, want nothing", res)
	}
}

func TestTriggerAt(t *testing.T) {
	start := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)
	task := models.Task{StartDate: start, EndDate: start.Add(8 * time.Hour)}
	at := time.Date(2024, time.May, 9, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    models.Reminder
		want time.Time
	}{
		{"minutes before start", models.Reminder{Type: models.ReminderRelative, Offset: 15, Unit: models.ReminderMinutes}, start.Add(-15 * time.Minute)},
		{"hours before end", models.Reminder{Type: models.ReminderRelative, Offset: 2, Unit: models.ReminderHours, Anchor: models.AnchorEnd}, start.Add(6 * time.Hour)},
		{"days before start", models.Reminder{Type: models.ReminderRelative, Offset: 1, Unit: models.ReminderDays}, start.AddDate(0, 0, -1)},
		{"absolute", models.Reminder{Type: models.ReminderAbsolute, At: &at}, at},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TriggerAt(task, tt.r)
			if !ok || !got.Equal(tt.want) {
				t.Errorf("TriggerAt = %v, %v; want %v", got, ok, tt.want)
			}
		})
	}
}

func TestDue_Window(t *testing.T) {
	start := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)
	task := models.Task{StartDate: start}
	r := models.Reminder{Type: models.ReminderRelative, Offset: 0, Unit: models.ReminderMinutes}

	if !Due(task, r, start.Add(59*time.Second)) {
		t.Error("reminder inside the window must be due")
	}
	if Due(task, r, start.Add(-61*time.Second)) {
		t.Error("reminder before the window must not be due")
	}
	r.Sent = true
	if Due(task, r, start) {
		t.Error("sent reminder must not be due again")
	}
}
