// internal/models/task.go
package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusOverdue    TaskStatus = "overdue"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow       TaskPriority = "low"
	PriorityNormal    TaskPriority = "normal"
	PriorityImportant TaskPriority = "important"
	PriorityUrgent    TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityImportant, PriorityUrgent:
		return true
	}
	return false
}

// RecurrenceType is the stepping unit of a recurring series.
type RecurrenceType string

const (
	RecurrenceNone     RecurrenceType = "none"
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceBiweekly RecurrenceType = "biweekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
	RecurrenceYearly   RecurrenceType = "yearly"
)

// IsRecurring treats the empty value as "none".
func (r RecurrenceType) IsRecurring() bool {
	return r != "" && r != RecurrenceNone
}

func (r RecurrenceType) Valid() bool {
	switch r {
	case "", RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

type Subtask struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Completed  bool   `json:"completed"`
	AssigneeID string `json:"assigneeId,omitempty"`
}

type ReminderType string

const (
	ReminderRelative ReminderType = "relative"
	ReminderAbsolute ReminderType = "absolute"
)

type ReminderUnit string

const (
	ReminderMinutes ReminderUnit = "minutes"
	ReminderHours   ReminderUnit = "hours"
	ReminderDays    ReminderUnit = "days"
)

type ReminderAnchor string

const (
	AnchorStart ReminderAnchor = "start"
	AnchorEnd   ReminderAnchor = "end"
)

// Reminder fires either at an absolute instant or at an offset before the
// task start or end.
type Reminder struct {
	ID     string         `json:"id"`
	Type   ReminderType   `json:"type"`
	Offset int            `json:"offset,omitempty"`
	Unit   ReminderUnit   `json:"unit,omitempty"`
	Anchor ReminderAnchor `json:"anchor,omitempty"`
	At     *time.Time     `json:"at,omitempty"`
	Sent   bool           `json:"sent"`
	SentAt *time.Time     `json:"sentAt,omitempty"`
}

type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WorkSessionChange records one edit of a finished session.
type WorkSessionChange struct {
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy"`
	Field     string    `json:"field"`
	From      string    `json:"from"`
	To        string    `json:"to"`
}

type WorkSession struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	StartTime     time.Time           `json:"startTime"`
	EndTime       *time.Time          `json:"endTime,omitempty"`
	BreakMinutes  int                 `json:"breakMinutes"`
	ActualMinutes int                 `json:"actualMinutes"`
	Changes       []WorkSessionChange `json:"changes,omitempty"`
}

// ComputeActual sets ActualMinutes to end - start - break, never below zero.
func (w *WorkSession) ComputeActual() {
	if w.EndTime == nil {
		w.ActualMinutes = 0
		return
	}
	minutes := int(w.EndTime.Sub(w.StartTime).Minutes()) - w.BreakMinutes
	if minutes < 0 {
		minutes = 0
	}
	w.ActualMinutes = minutes
}

// Task represents the structure of a task document.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Type        string       `json:"type,omitempty"`
	ProjectID   string       `json:"projectId,omitempty"`
	TeamID      string       `json:"teamId,omitempty"`
	AssigneeID  string       `json:"assigneeId,omitempty"`
	CreatorID   string       `json:"creatorId"`
	CreatorName string       `json:"creatorName,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   time.Time    `json:"startDate"`
	EndDate     time.Time    `json:"endDate"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`

	Subtasks     []Subtask     `json:"subtasks,omitempty"`
	Reminders    []Reminder    `json:"reminders,omitempty"`
	Comments     []Comment     `json:"comments,omitempty"`
	WorkSessions []WorkSession `json:"workSessions,omitempty"`

	Recurrence         RecurrenceType `json:"recurrence,omitempty"`
	RecurrenceEndDate  *time.Time     `json:"recurrenceEndDate,omitempty"`
	ParentTaskID       string         `json:"parentTaskId,omitempty"`
	RecurrenceInstance int            `json:"recurrenceInstance"`
	IsRecurrenceParent bool           `json:"isRecurrenceParent"`

	IsDeleted            bool       `json:"isDeleted"`
	DeletedAt            *time.Time `json:"deletedAt,omitempty"`
	DeletedBy            string     `json:"deletedBy,omitempty"`
	StatusBeforeDeletion TaskStatus `json:"statusBeforeDeletion,omitempty"`

	DateCheckedAt *time.Time `json:"dateCheckedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (t *Task) IsTeamTask() bool { return t.TeamID != "" }

// EffectiveAssignee falls back to the creator when no assignee is set.
func (t *Task) EffectiveAssignee() string {
	if t.AssigneeID != "" {
		return t.AssigneeID
	}
	return t.CreatorID
}

func (t *Task) IsOpen() bool {
	return !t.IsDeleted && t.Status != StatusCompleted
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	CreatorID          *string
	AssigneeID         *string
	ProjectID          *string
	TeamID             *string
	ParentTaskID       *string
	Status             *TaskStatus
	IsDeleted          *bool
	IsRecurrenceParent *bool
}
