package interfaces

import (
	"context"

	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// ListByUser returns the newest notifications of a user.
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}
