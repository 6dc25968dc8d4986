package models

import "time"

type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
	TeamRoleViewer TeamRole = "viewer"
)

func (r TeamRole) Valid() bool {
	switch r {
	case TeamRoleOwner, TeamRoleAdmin, TeamRoleMember, TeamRoleViewer:
		return true
	}
	return false
}

// IsManager is true for roles allowed to administer the team and its tasks.
func (r TeamRole) IsManager() bool {
	return r == TeamRoleOwner || r == TeamRoleAdmin
}

type TeamMember struct {
	UserID   string    `json:"userId"`
	Role     TeamRole  `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Team struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	OwnerID     string       `json:"ownerId"`
	Members     []TeamMember `json:"members"`

	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (t *Team) MemberRole(userID string) (TeamRole, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

type InvitationType string

const (
	InvitationEmail InvitationType = "email"
	InvitationLink  InvitationType = "link"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// TeamInvitation is addressed by its token.
type TeamInvitation struct {
	ID         string           `json:"id"`
	Token      string           `json:"token"`
	TeamID     string           `json:"teamId"`
	TeamName   string           `json:"teamName,omitempty"`
	InviterID  string           `json:"inviterId"`
	Type       InvitationType   `json:"type"`
	Email      string           `json:"email,omitempty"`
	Role       TeamRole         `json:"role"`
	Status     InvitationStatus `json:"status"`
	ExpiresAt  time.Time        `json:"expiresAt"`
	AcceptedBy string           `json:"acceptedBy,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}
