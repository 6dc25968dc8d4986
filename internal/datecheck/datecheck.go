// Package datecheck decides once per calendar day whether a task or project
// has reached its start or end date.
package datecheck

import (
	"time"

	"teamtasks/internal/models"
	"teamtasks/internal/utils"
)

// Result is the outcome of one check. When AlreadyChecked is set no rule was
// evaluated.
type Result struct {
	AlreadyChecked bool `json:"alreadyChecked"`
	StartElapsed   bool `json:"startElapsed"`
	Overdue        bool `json:"overdue"`
}

// ActionNeeded is true when at least one rule fired.
func (r Result) ActionNeeded() bool {
	return r.StartElapsed || r.Overdue
}

// MarkChecked tells the caller to store dateCheckedAt = now.
func (r Result) MarkChecked() bool {
	return !r.AlreadyChecked && r.ActionNeeded()
}

// EffectiveStart is the stored instant when it carries a time of day,
// otherwise the start of that day.
func EffectiveStart(t time.Time) time.Time {
	if utils.HasTimeOfDay(t) {
		return t
	}
	return utils.StartOfDay(t)
}

// EffectiveEnd is the stored instant when it carries a time of day,
// otherwise the last instant of that day.
func EffectiveEnd(t time.Time) time.Time {
	if utils.HasTimeOfDay(t) {
		return t
	}
	return utils.EndOfDay(t)
}

// CheckedToday compares by calendar date in now's location.
func CheckedToday(checkedAt *time.Time, now time.Time) bool {
	return checkedAt != nil && utils.SameDay(now, *checkedAt)
}

func CheckTask(t models.Task, now time.Time) Result {
	if CheckedToday(t.DateCheckedAt, now) {
		return Result{AlreadyChecked: true}
	}
	var res Result
	if t.Status == models.StatusNotStarted && !now.Before(EffectiveStart(t.StartDate.In(now.Location()))) {
		res.StartElapsed = true
	}
	switch t.Status {
	case models.StatusCompleted, models.StatusOverdue:
	default:
		if !t.EndDate.IsZero() && now.After(EffectiveEnd(t.EndDate.In(now.Location()))) {
			res.Overdue = true
		}
	}
	return res
}

func CheckProject(p models.Project, now time.Time) Result {
	if CheckedToday(p.DateCheckedAt, now) {
		return Result{AlreadyChecked: true}
	}
	var res Result
	if p.Status == models.ProjectNotStarted && p.StartDate != nil &&
		!now.Before(EffectiveStart(p.StartDate.In(now.Location()))) {
		res.StartElapsed = true
	}
	if p.Status != models.ProjectCompleted && p.EndDate != nil &&
		now.After(EffectiveEnd(p.EndDate.In(now.Location()))) {
		res.Overdue = true
	}
	return res
}
