package interfaces

import (
	"context"

	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

type MessageRepository interface {
	// SaveMessage inserts the message and upserts the chat summary in one transaction.
	SaveMessage(ctx context.Context, msg *model.Message, chat *model.Chat) error
	GetMessageByID(ctx context.Context, id string) (*model.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	// ListConversation returns the messages between two users, oldest first.
	ListConversation(ctx context.Context, userID, otherID string) ([]*model.Message, error)
	ListChats(ctx context.Context, userID string) ([]*model.Chat, error)
	// MarkRead flags every message sent by senderID to receiverID as read.
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
}
