// Package prioritize ranks a user's open tasks and sorts them into the
// dashboard buckets.
package prioritize

import (
	"slices"
	"time"

	"teamtasks/internal/datecheck"
	"teamtasks/internal/models"
	"teamtasks/internal/utils"
)

const (
	priorityWeight      = 3
	dueWeight           = 2
	sharedProjectWeight = 1.5
	assigneeWeight      = 1
	inProgressBonus     = 5

	// NextLimit is how many tasks NextTasks returns.
	NextLimit = 3
)

var priorityScores = map[models.TaskPriority]float64{
	models.PriorityUrgent:    4,
	models.PriorityImportant: 3,
	models.PriorityNormal:    1,
	models.PriorityLow:       0,
}

// DueScore buckets the time left until the task's effective end.
// overdue 5, today or tomorrow 4, within 3 days 3, within a week 2, later 1.
func DueScore(t models.Task, now time.Time) float64 {
	if isOverdue(t, now) {
		return 5
	}
	days := utils.DaysBetween(now, t.EndDate.In(now.Location()))
	switch {
	case days <= 1:
		return 4
	case days <= 3:
		return 3
	case days <= 7:
		return 2
	}
	return 1
}

// Ranked is a task with its score.
type Ranked struct {
	Task  models.Task `json:"task"`
	Score float64     `json:"score"`
}

// Score weighs a task against the other open tasks of the same user.
func Score(t models.Task, open []models.Task, userID string, now time.Time) float64 {
	score := priorityScores[t.Priority]*priorityWeight + DueScore(t, now)*dueWeight
	if t.ProjectID != "" && sharesProject(t, open) {
		score += sharedProjectWeight
	}
	if t.AssigneeID != "" && t.AssigneeID == userID {
		score += assigneeWeight
	}
	if t.Status == models.StatusInProgress {
		score += inProgressBonus
	}
	return score
}

func sharesProject(t models.Task, open []models.Task) bool {
	n := 0
	for _, o := range open {
		if o.ProjectID == t.ProjectID {
			n++
		}
	}
	if !containsTask(open, t.ID) {
		n++
	}
	return n >= 2
}

func containsTask(tasks []models.Task, id string) bool {
	if id == "" {
		return false
	}
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Rank scores every open task, highest first. Equal scores keep input order.
func Rank(tasks []models.Task, userID string, now time.Time) []Ranked {
	open := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	ranked := make([]Ranked, 0, len(open))
	for _, t := range open {
		ranked = append(ranked, Ranked{Task: t, Score: Score(t, open, userID, now)})
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return ranked
}

// NextTasks returns the top NextLimit tasks of Rank.
func NextTasks(tasks []models.Task, userID string, now time.Time) []Ranked {
	ranked := Rank(tasks, userID, now)
	if len(ranked) > NextLimit {
		ranked = ranked[:NextLimit]
	}
	return ranked
}

func isOverdue(t models.Task, now time.Time) bool {
	if t.Status == models.StatusCompleted {
		return false
	}
	if t.Status == models.StatusOverdue {
		return true
	}
	return !t.EndDate.IsZero() && now.After(datecheck.EffectiveEnd(t.EndDate.In(now.Location())))
}
