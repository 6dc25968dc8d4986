package models

import "time"

type NotificationType string

const (
	NotifyTaskAssigned       NotificationType = "task_assigned"
	NotifyTaskUpdated        NotificationType = "task_updated"
	NotifyTaskCompleted      NotificationType = "task_completed"
	NotifyTaskDeleted        NotificationType = "task_deleted"
	NotifyTaskComment        NotificationType = "task_comment"
	NotifyTaskReminder       NotificationType = "task_reminder"
	NotifyTaskOverdue        NotificationType = "task_overdue"
	NotifyProjectAdded       NotificationType = "project_member_added"
	NotifyProjectCompleted   NotificationType = "project_completed"
	NotifyProjectOverdue     NotificationType = "project_overdue"
	NotifyTeamInvitation     NotificationType = "team_invitation"
	NotifyInvitationAccepted NotificationType = "invitation_accepted"
	NotifyTeamMemberAdded    NotificationType = "team_member_added"
	NotifyTeamRoleChanged    NotificationType = "team_role_changed"
	NotifyTeamMemberRemoved  NotificationType = "team_member_removed"
)

// Category maps an event type to its preference category.
func (t NotificationType) Category() string {
	switch t {
	case NotifyTaskReminder:
		return CategoryReminders
	case NotifyProjectAdded, NotifyProjectCompleted, NotifyProjectOverdue:
		return CategoryProjects
	case NotifyTeamInvitation, NotifyInvitationAccepted, NotifyTeamMemberAdded,
		NotifyTeamRoleChanged, NotifyTeamMemberRemoved:
		return CategoryTeams
	default:
		return CategoryTasks
	}
}

// Notification is an in-app notification document.
type Notification struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	TaskID       string           `json:"taskId,omitempty"`
	ProjectID    string           `json:"projectId,omitempty"`
	TeamID       string           `json:"teamId,omitempty"`
	InvitationID string           `json:"invitationId,omitempty"`
	Read         bool             `json:"read"`
	CreatedAt    time.Time        `json:"createdAt"`
}
