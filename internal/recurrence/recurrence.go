// Package recurrence generates the child instances of recurring tasks.
//
// Both generation strategies step from the parent's start date with Step, so
// the n-th instance of a series always lands on the same date no matter which
// path created it.
package recurrence

import (
	"time"

	"github.com/google/uuid"

	"teamtasks/internal/apperr"
	"teamtasks/internal/models"
	"teamtasks/internal/utils"
)

// maxSteps bounds generation loops; the widest window (36 months of yearly
// steps, 3 months of daily steps) stays far below it.
const maxSteps = 1000

var capMonths = map[models.RecurrenceType]int{
	models.RecurrenceDaily:    3,
	models.RecurrenceWeekly:   3,
	models.RecurrenceBiweekly: 6,
	models.RecurrenceMonthly:  12,
	models.RecurrenceYearly:   36,
}

// CapMonths returns the generation window for a unit in months.
func CapMonths(unit models.RecurrenceType) int {
	return capMonths[unit]
}

// Step returns the n-th occurrence after anchor. Monthly and yearly steps keep
// the anchor's day of month, clamped to the length of the target month, so a
// Jan 31 series runs Jan 31, Feb 28, Mar 31. Negative n steps backwards.
func Step(unit models.RecurrenceType, anchor time.Time, n int) time.Time {
	switch unit {
	case models.RecurrenceDaily:
		return anchor.AddDate(0, 0, n)
	case models.RecurrenceWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case models.RecurrenceBiweekly:
		return anchor.AddDate(0, 0, 14*n)
	case models.RecurrenceMonthly:
		return addMonthsClamped(anchor, n)
	case models.RecurrenceYearly:
		return addMonthsClamped(anchor, 12*n)
	}
	return anchor
}

// NextInstanceDate is a single step from "from".
func NextInstanceDate(unit models.RecurrenceType, from time.Time) time.Time {
	return Step(unit, from, 1)
}

// MaxEndDate is the last date a series starting at start may reach.
func MaxEndDate(unit models.RecurrenceType, start time.Time) time.Time {
	return addMonthsClamped(start, capMonths[unit])
}

// ValidateEndDate checks a user supplied series end date against the start
// date and the per-unit window.
func ValidateEndDate(unit models.RecurrenceType, start time.Time, end *time.Time) error {
	if !unit.IsRecurring() {
		return nil
	}
	if _, ok := capMonths[unit]; !ok {
		return apperr.Validation("unknown recurrence type %q", unit)
	}
	if end == nil {
		return nil
	}
	if utils.DayBefore(*end, start) {
		return apperr.Validation("recurrence end date must not be before the start date")
	}
	if utils.DayAfter(*end, MaxEndDate(unit, start)) {
		return apperr.Validation("recurrence end date exceeds the maximum of %d months for %s tasks",
			capMonths[unit], unit)
	}
	return nil
}

// PlanBounded lists the children to create for a series with a known end.
//
// Steps run from the parent start up to the series end date (or the window
// cap when no end date is set) and never past the cap. Steps dated before
// today are skipped, as are dates an existing child already covers.
// Ordinals continue after the highest existing instance.
func PlanBounded(parent models.Task, existing []models.Task, now time.Time) ([]models.Task, error) {
	unit := parent.Recurrence
	if !unit.IsRecurring() {
		return nil, nil
	}
	if err := ValidateEndDate(unit, parent.StartDate, parent.RecurrenceEndDate); err != nil {
		return nil, err
	}

	limit := MaxEndDate(unit, parent.StartDate)
	if parent.RecurrenceEndDate != nil && utils.DayBefore(*parent.RecurrenceEndDate, limit) {
		limit = *parent.RecurrenceEndDate
	}
	today := utils.StartOfDay(now.In(parent.StartDate.Location()))

	covered := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		covered[utils.DayKey(c.StartDate.In(parent.StartDate.Location()))] = struct{}{}
	}
	ordinal := maxInstance(existing)

	var out []models.Task
	for n := 1; n <= maxSteps; n++ {
		at := Step(unit, parent.StartDate, n)
		if utils.DayAfter(at, limit) {
			break
		}
		if at.Before(today) {
			continue
		}
		if _, ok := covered[utils.DayKey(at)]; ok {
			continue
		}
		ordinal++
		out = append(out, NewInstance(parent, at, ordinal))
	}
	return out, nil
}

// NextRolling returns the single next child of an open-ended series once the
// latest known instance has ended, or false when nothing is due. The child
// lands on the first step after the latest instance's start date.
func NextRolling(parent models.Task, children []models.Task, now time.Time) (models.Task, bool) {
	if !parent.Recurrence.IsRecurring() || parent.RecurrenceEndDate != nil {
		return models.Task{}, false
	}
	last := parent
	for _, c := range children {
		if c.RecurrenceInstance > last.RecurrenceInstance {
			last = c
		}
	}
	if last.EndDate.After(now) {
		return models.Task{}, false
	}
	n := stepAfter(parent.Recurrence, parent.StartDate, last.StartDate)
	return NewInstance(parent, Step(parent.Recurrence, parent.StartDate, n), last.RecurrenceInstance+1), true
}

// Restart builds the first child of a series whose unit just changed: the
// first step of the current unit dated today or later and after every
// remaining child.
func Restart(parent models.Task, remaining []models.Task, now time.Time) (models.Task, bool) {
	if !parent.Recurrence.IsRecurring() {
		return models.Task{}, false
	}
	loc := parent.StartDate.Location()
	after := utils.StartOfDay(now.In(loc)).AddDate(0, 0, -1)
	for _, c := range remaining {
		if utils.DayAfter(c.StartDate.In(loc), after) {
			after = c.StartDate.In(loc)
		}
	}
	at := Step(parent.Recurrence, parent.StartDate, stepAfter(parent.Recurrence, parent.StartDate, after))
	if parent.RecurrenceEndDate != nil && utils.DayAfter(at, *parent.RecurrenceEndDate) {
		return models.Task{}, false
	}
	return NewInstance(parent, at, maxInstance(remaining)+1), true
}

// stepAfter returns the smallest n >= 1 whose step falls on a later calendar
// day than t.
func stepAfter(unit models.RecurrenceType, anchor, t time.Time) int {
	t = t.In(anchor.Location())
	n := max(estimateSteps(unit, anchor, t), 1)
	for n > 1 && utils.DayAfter(Step(unit, anchor, n-1), t) {
		n--
	}
	for i := 0; i < maxSteps && !utils.DayAfter(Step(unit, anchor, n), t); i++ {
		n++
	}
	return n
}

func estimateSteps(unit models.RecurrenceType, anchor, t time.Time) int {
	days := utils.DaysBetween(anchor, t)
	switch unit {
	case models.RecurrenceDaily:
		return days
	case models.RecurrenceWeekly:
		return days / 7
	case models.RecurrenceBiweekly:
		return days / 14
	case models.RecurrenceMonthly:
		return (t.Year()-anchor.Year())*12 + int(t.Month()) - int(anchor.Month())
	case models.RecurrenceYearly:
		return t.Year() - anchor.Year()
	}
	return 1
}

// NewInstance builds the child for ordinal starting at start. The child keeps
// the parent's duration; subtasks and reminders are reset with fresh ids.
func NewInstance(parent models.Task, start time.Time, ordinal int) models.Task {
	shift := start.Sub(parent.StartDate)

	child := models.Task{
		Title:              parent.Title,
		Description:        parent.Description,
		Type:               parent.Type,
		ProjectID:          parent.ProjectID,
		TeamID:             parent.TeamID,
		AssigneeID:         parent.AssigneeID,
		CreatorID:          parent.CreatorID,
		CreatorName:        parent.CreatorName,
		Status:             models.StatusNotStarted,
		Priority:           parent.Priority,
		StartDate:          start,
		EndDate:            start.Add(parent.EndDate.Sub(parent.StartDate)),
		Recurrence:         parent.Recurrence,
		ParentTaskID:       parent.ID,
		RecurrenceInstance: ordinal,
	}
	if parent.RecurrenceEndDate != nil {
		end := *parent.RecurrenceEndDate
		child.RecurrenceEndDate = &end
	}
	for _, s := range parent.Subtasks {
		child.Subtasks = append(child.Subtasks, models.Subtask{
			ID:         uuid.NewString(),
			Title:      s.Title,
			AssigneeID: s.AssigneeID,
		})
	}
	for _, r := range parent.Reminders {
		rem := models.Reminder{
			ID:     uuid.NewString(),
			Type:   r.Type,
			Offset: r.Offset,
			Unit:   r.Unit,
			Anchor: r.Anchor,
		}
		if r.At != nil {
			at := r.At.Add(shift)
			rem.At = &at
		}
		child.Reminders = append(child.Reminders, rem)
	}
	return child
}

func maxInstance(tasks []models.Task) int {
	highest := 0
	for _, t := range tasks {
		if t.RecurrenceInstance > highest {
			highest = t.RecurrenceInstance
		}
	}
	return highest
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	year := y + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
