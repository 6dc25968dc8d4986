package models

import "time"

// TelegramLink is a short-lived code a user sends to the bot to bind their
// Telegram chat as push target.
type TelegramLink struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
