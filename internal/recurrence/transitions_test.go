package recurrence

import (
	"testing"
	"time"

	"teamtasks/internal/models"
)

func TestClassify(t *testing.T) {
	jan := date(2024, time.January, 31)
	feb := date(2024, time.February, 29)

	tests := []struct {
		name string
		prev Settings
		next Settings
		want Transition
	}{
		{"none to none", Settings{Unit: models.RecurrenceNone}, Settings{Unit: ""}, Unchanged},
		{"stop", Settings{Unit: models.RecurrenceWeekly}, Settings{Unit: models.RecurrenceNone}, Stop},
		{"start", Settings{Unit: models.RecurrenceNone}, Settings{Unit: models.RecurrenceDaily}, Start},
		{"change unit", Settings{Unit: models.RecurrenceWeekly}, Settings{Unit: models.RecurrenceMonthly}, ChangeUnit},
		{"change end", Settings{Unit: models.RecurrenceWeekly, EndDate: &jan}, Settings{Unit: models.RecurrenceWeekly, EndDate: &feb}, ChangeEndDate},
		{"add end", Settings{Unit: models.RecurrenceWeekly}, Settings{Unit: models.RecurrenceWeekly, EndDate: &feb}, ChangeEndDate},
		{"drop end", Settings{Unit: models.RecurrenceWeekly, EndDate: &jan}, Settings{Unit: models.RecurrenceWeekly}, ChangeEndDate},
		{"same", Settings{Unit: models.RecurrenceWeekly, EndDate: &jan}, Settings{Unit: models.RecurrenceWeekly, EndDate: &jan}, Unchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.prev, tt.next); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtends(t *testing.T) {
	jan := date(2024, time.January, 31)
	feb := date(2024, time.February, 29)
	if !Extends(Settings{EndDate: &jan}, Settings{EndDate: &feb}) {
		t.Error("later end date should extend")
	}
	if Extends(Settings{EndDate: &feb}, Settings{EndDate: &jan}) {
		t.Error("earlier end date should not extend")
	}
	if !Extends(Settings{}, Settings{EndDate: &jan}) {
		t.Error("bounding an open series should generate")
	}
	if Extends(Settings{EndDate: &jan}, Settings{}) {
		t.Error("dropping the end date hands over to rolling generation")
	}
}

func TestStaleChildren_StopKeepsCompletedAndPast(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	children := []models.Task{
		{ID: "past", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 3)},
		{ID: "current", StartDate: date(2024, time.January, 15), EndDate: date(2024, time.January, 17)},
		{ID: "done", StartDate: date(2024, time.January, 22), EndDate: date(2024, time.January, 24), Status: models.StatusCompleted},
		{ID: "future", StartDate: date(2024, time.January, 29), EndDate: date(2024, time.January, 31)},
	}

	for _, tr := range []Transition{Stop, ChangeUnit} {
		stale := StaleChildren(tr, children, Settings{}, now)
		if len(stale) != 2 || stale[0].ID != "current" || stale[1].ID != "future" {
			t.Errorf("%s: stale = %v, want [current future]", tr, ids(stale))
		}
	}
}

func TestStaleChildren_ChangeEndDate(t *testing.T) {
	now := date(2024, time.January, 1)
	end := date(2024, time.January, 24)
	children := []models.Task{
		{ID: "a", EndDate: date(2024, time.January, 10)},
		{ID: "b", EndDate: time.Date(2024, time.January, 24, 18, 0, 0, 0, time.UTC)},
		{ID: "c", EndDate: date(2024, time.January, 31), Status: models.StatusCompleted},
	}
	stale := StaleChildren(ChangeEndDate, children, Settings{Unit: models.RecurrenceWeekly, EndDate: &end}, now)
	if len(stale) != 1 || stale[0].ID != "c" {
		t.Errorf("stale = %v, want [c]", ids(stale))
	}

	if got := StaleChildren(ChangeEndDate, children, Settings{Unit: models.RecurrenceWeekly}, now); got != nil {
		t.Errorf("dropping the end date must not delete, got %v", ids(got))
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
