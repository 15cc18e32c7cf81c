package model

import "time"

type NotificationType string

const (
	NotificationJob     NotificationType = "job"
	NotificationMessage NotificationType = "message"
	NotificationComment NotificationType = "comment"
	NotificationLike    NotificationType = "like"
	NotificationSystem  NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
