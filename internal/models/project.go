package models

import "time"

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleMember ProjectRole = "member"
	ProjectRoleViewer ProjectRole = "viewer"
)

func (r ProjectRole) Valid() bool {
	return r == ProjectRoleOwner || r == ProjectRoleMember || r == ProjectRoleViewer
}

type ProjectMember struct {
	UserID string      `json:"userId"`
	Role   ProjectRole `json:"role"`
}

// Project groups tasks, optionally inside a team.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	OwnerID     string          `json:"ownerId"`
	TeamID      string          `json:"teamId,omitempty"`
	AssigneeID  string          `json:"assigneeId,omitempty"`
	Members     []ProjectMember `json:"members,omitempty"`
	Status      ProjectStatus   `json:"status"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`

	CompletionRate int `json:"completionRate"`
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`

	IsDeleted            bool          `json:"isDeleted"`
	DeletedAt            *time.Time    `json:"deletedAt,omitempty"`
	StatusBeforeDeletion ProjectStatus `json:"statusBeforeDeletion,omitempty"`
	OriginalTaskIDs      []string      `json:"originalTaskIds,omitempty"`
	// ClosedTaskIDs are the tasks completing the project closed; reopening
	// the project reopens them.
	ClosedTaskIDs []string `json:"closedTaskIds,omitempty"`

	DateCheckedAt *time.Time `json:"dateCheckedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// EffectiveAssignee is the assignee if set, otherwise the owner.
func (p *Project) EffectiveAssignee() string {
	if p.AssigneeID != "" {
		return p.AssigneeID
	}
	return p.OwnerID
}

func (p *Project) MemberRole(userID string) (ProjectRole, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

type ProjectFilter struct {
	OwnerID   *string
	TeamID    *string
	IsDeleted *bool
}
