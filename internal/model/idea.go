package model

import "time"

// Idea is a normalized answer of the idea generation webhook.
type Idea struct {
	StartupIdea     string `json:"startup_idea"`
	Recommendations string `json:"recommendations"`
}

type GeneratedIdea struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Prompt          string    `json:"prompt"`
	StartupIdea     string    `json:"startup_idea"`
	Recommendations string    `json:"recommendations"`
	Timestamp       time.Time `json:"timestamp"`
}
