package model

import "time"

// User is an account known to the identity provider.
type User struct {
	ID                   string               `json:"id"`
	Email                string               `json:"email"`
	DisplayName          string               `json:"display_name"`
	PhotoURL             string               `json:"photo_url"`
	Bio                  string               `json:"bio"`
	PasswordHash         string               `json:"-"`
	Provider             string               `json:"provider,omitempty"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// Display returns the snapshot copied onto content the user authors.
func (u *User) Display() AuthorDisplay {
	return AuthorDisplay{Name: u.DisplayName, PhotoURL: u.PhotoURL}.Resolve()
}

type NotificationSettings struct {
	EmailNotifications bool `json:"email_notifications"`
	PushNotifications  bool `json:"push_notifications"`
	NewMessages        bool `json:"new_messages"`
	NewComments        bool `json:"new_comments"`
	JobApplications    bool `json:"job_applications"`
	MarketingEmails    bool `json:"marketing_emails"`
}

// DefaultNotificationSettings is what a new account starts with.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EmailNotifications: true,
		PushNotifications:  true,
		NewMessages:        true,
		NewComments:        true,
		JobApplications:    true,
		MarketingEmails:    false,
	}
}

// ProfileUpdate carries the editable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}
