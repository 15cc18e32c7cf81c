// Package events carries domain events from the services that produce them to the
// notification pipeline, through Kafka or in process.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	PostCommented = "post.commented"
	PostLiked     = "post.liked"
	MessageSent   = "message.sent"
	JobApplied    = "job.applied"
)

// Event is something that happened to a user's content.
type Event struct {
	Type string `json:"type"`
	// ActorID is who caused the event; RecipientID is whose content it touched.
	ActorID     string    `json:"actor_id"`
	ActorName   string    `json:"actor_name,omitempty"`
	RecipientID string    `json:"recipient_id"`
	SubjectID   string    `json:"subject_id"`
	Summary     string    `json:"summary,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Key partitions events by recipient so each user's events stay ordered.
func (e Event) Key() string {
	return e.RecipientID
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Handler consumes one event.
type Handler func(ctx context.Context, event Event) error
