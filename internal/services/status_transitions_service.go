package services

import "teamtasks/internal/models"

// Allowed manual status changes. "overdue" is only ever set by the date check.
var TaskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusNotStarted: {models.StatusInProgress: true, models.StatusCompleted: true},
	models.StatusInProgress: {models.StatusNotStarted: true, models.StatusCompleted: true},
	models.StatusOverdue:    {models.StatusInProgress: true, models.StatusCompleted: true},
	models.StatusCompleted:  {models.StatusNotStarted: true, models.StatusInProgress: true},
}

var ProjectTransitions = map[models.ProjectStatus]map[models.ProjectStatus]bool{
	models.ProjectNotStarted: {models.ProjectInProgress: true, models.ProjectCompleted: true},
	models.ProjectInProgress: {models.ProjectNotStarted: true, models.ProjectCompleted: true},
	models.ProjectCompleted:  {models.ProjectInProgress: true},
}

func canTransition[S comparable](current, to S, table map[S]map[S]bool) bool {
	var empty S
	if current == empty || current == to {
		return true
	}
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}
