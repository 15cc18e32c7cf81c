package model

import (
	"sort"
	"strings"
	"time"
)

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Chat is the summary row of a conversation between two users.
type Chat struct {
	ID            string    `json:"id"`
	Participants  []string  `json:"participants"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// ChatSummary is a chat as seen by one of its participants.
type ChatSummary struct {
	ChatID        string    `json:"chat_id"`
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	PhotoURL      string    `json:"photo_url"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// ChatID is the id shared by both directions of a conversation.
func ChatID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// Other returns the participant that is not userID.
func (c *Chat) Other(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return userID
}
