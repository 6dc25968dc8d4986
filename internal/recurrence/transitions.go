package recurrence

import (
	"time"

	"teamtasks/internal/models"
	"teamtasks/internal/utils"
)

// Transition is the effect of changing a task's recurrence settings.
type Transition int

const (
	Unchanged Transition = iota
	// Stop: recurring -> none.
	Stop
	// Start: none -> recurring.
	Start
	// ChangeUnit: recurring -> a different recurring unit.
	ChangeUnit
	// ChangeEndDate: same unit, different series end date.
	ChangeEndDate
)

func (t Transition) String() string {
	switch t {
	case Stop:
		return "stop"
	case Start:
		return "start"
	case ChangeUnit:
		return "change_unit"
	case ChangeEndDate:
		return "change_end_date"
	}
	return "unchanged"
}

// Settings is the recurrence configuration of a series parent.
type Settings struct {
	Unit    models.RecurrenceType
	EndDate *time.Time
}

func SettingsOf(t models.Task) Settings {
	return Settings{Unit: t.Recurrence, EndDate: t.RecurrenceEndDate}
}

// Classify keys the transition on old/new unit and end date.
func Classify(prev, next Settings) Transition {
	was, is := prev.Unit.IsRecurring(), next.Unit.IsRecurring()
	switch {
	case was && !is:
		return Stop
	case !was && is:
		return Start
	case !was && !is:
		return Unchanged
	case prev.Unit != next.Unit:
		return ChangeUnit
	case !sameEndDate(prev.EndDate, next.EndDate):
		return ChangeEndDate
	}
	return Unchanged
}

// Extends reports whether an end date change lets the series run longer:
// a later end date, or a bound added to a previously open-ended series.
func Extends(prev, next Settings) bool {
	if next.EndDate == nil {
		return false
	}
	if prev.EndDate == nil {
		return true
	}
	return utils.DayAfter(*next.EndDate, *prev.EndDate)
}

// StaleChildren selects the children a transition hard-deletes.
//
// Stop and ChangeUnit remove every non-completed child that has not ended
// before today. ChangeEndDate removes children ending after the new end date.
func StaleChildren(tr Transition, children []models.Task, next Settings, now time.Time) []models.Task {
	var out []models.Task
	switch tr {
	case Stop, ChangeUnit:
		today := utils.StartOfDay(now)
		for _, c := range children {
			if c.Status == models.StatusCompleted {
				continue
			}
			if c.EndDate.Before(today) {
				continue
			}
			out = append(out, c)
		}
	case ChangeEndDate:
		if next.EndDate == nil {
			return nil
		}
		limit := *next.EndDate
		if !utils.HasTimeOfDay(limit) {
			limit = utils.EndOfDay(limit)
		}
		for _, c := range children {
			if c.EndDate.After(limit) {
				out = append(out, c)
			}
		}
	}
	return out
}

func sameEndDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return utils.SameDay(*a, *b)
}
