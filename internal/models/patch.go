package models

import "time"

// TaskPatch is a partial update of a task. Untouched fields keep their value.
type TaskPatch struct {
	Title             Field[string]         `json:"title"`
	Description       Field[string]         `json:"description"`
	Type              Field[string]         `json:"type"`
	AssigneeID        Field[string]         `json:"assigneeId"`
	ProjectID         Field[string]         `json:"projectId"`
	Priority          Field[TaskPriority]   `json:"priority"`
	Status            Field[TaskStatus]     `json:"status"`
	StartDate         Field[time.Time]      `json:"startDate"`
	EndDate           Field[time.Time]      `json:"endDate"`
	Subtasks          Field[[]Subtask]      `json:"subtasks"`
	Reminders         Field[[]Reminder]     `json:"reminders"`
	Recurrence        Field[RecurrenceType] `json:"recurrence"`
	RecurrenceEndDate Field[time.Time]      `json:"recurrenceEndDate"`
}

type ProjectPatch struct {
	Name        Field[string]        `json:"name"`
	Description Field[string]        `json:"description"`
	AssigneeID  Field[string]        `json:"assigneeId"`
	Status      Field[ProjectStatus] `json:"status"`
	StartDate   Field[time.Time]     `json:"startDate"`
	EndDate     Field[time.Time]     `json:"endDate"`
}

type TeamPatch struct {
	Name        Field[string] `json:"name"`
	Description Field[string] `json:"description"`
}
