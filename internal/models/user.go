package models

import "time"

// Notification categories; the first level of user preferences.
const (
	CategoryTasks     = "tasks"
	CategoryProjects  = "projects"
	CategoryTeams     = "teams"
	CategoryReminders = "reminders"
)

// NotificationPreferences gates in-app notifications on two levels. A missing
// key means enabled.
type NotificationPreferences struct {
	Categories map[string]bool `json:"categories,omitempty"`
	Events     map[string]bool `json:"events,omitempty"`
}

// Allows reports whether both the category and the event type are enabled.
func (p NotificationPreferences) Allows(category string, event NotificationType) bool {
	if enabled, ok := p.Categories[category]; ok && !enabled {
		return false
	}
	if enabled, ok := p.Events[string(event)]; ok && !enabled {
		return false
	}
	return true
}

type User struct {
	ID           string                  `json:"id"`
	Email        string                  `json:"email"`
	DisplayName  string                  `json:"displayName"`
	PasswordHash string                  `json:"passwordHash,omitempty"`
	PushToken    string                  `json:"pushToken,omitempty"`
	Preferences  NotificationPreferences `json:"preferences"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// Public strips credentials before the user leaves the API.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=6,max=255"`
	DisplayName string `json:"displayName" binding:"required,max=120"`
}
