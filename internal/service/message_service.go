package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/events"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/realtime"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const defaultChatName = "User"

// MessageService handles direct messages between two users.
type MessageService struct {
	repo      interfaces.MessageRepository
	users     interfaces.UserRepository
	broker    realtime.Broker
	publisher events.Publisher
	timeout   time.Duration
	now       func() time.Time
}

func NewMessageService(repo interfaces.MessageRepository, users interfaces.UserRepository, broker realtime.Broker, publisher events.Publisher) *MessageService {
	return &MessageService{
		repo:      repo,
		users:     users,
		broker:    broker,
		publisher: publisher,
		timeout:   config.AppConfig.StoreTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SendMessage stores the message, refreshes the chat summary and pushes the message to
// live subscribers of the conversation.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.Validation("message cannot be empty")
	}
	if receiverID == "" || receiverID == senderID {
		return nil, errors.Validation("invalid receiver")
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if _, err := s.users.FindByID(storeCtx, receiverID); err != nil {
		return nil, storeError(storeCtx, "find receiver", err)
	}

	now := s.now()
	msg := &model.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  now,
		Read:       false,
	}
	chat := &model.Chat{
		ID:            model.ChatID(senderID, receiverID),
		Participants:  []string{senderID, receiverID},
		LastMessage:   content,
		LastMessageAt: now,
	}
	if err := s.repo.SaveMessage(storeCtx, msg, chat); err != nil {
		return nil, storeError(storeCtx, "save message", err)
	}

	if s.broker != nil {
		if err := s.broker.Publish(storeCtx, realtime.ChatChannel(chat.ID), msg); err != nil {
			util.Logger.Warn("failed to push message", zap.Error(err), zap.String("chat_id", chat.ID))
		}
	}
	if s.publisher != nil {
		publish(storeCtx, s.publisher, events.Event{
			Type:        events.MessageSent,
			ActorID:     senderID,
			RecipientID: receiverID,
			SubjectID:   chat.ID,
			Summary:     content,
			OccurredAt:  now,
		})
	}
	return msg, nil
}

// DeleteMessage removes a message. Only its sender may do so.
func (s *MessageService) DeleteMessage(ctx context.Context, id, callerID string) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	msg, err := s.repo.GetMessageByID(storeCtx, id)
	if err != nil {
		return storeError(storeCtx, "find message", err)
	}
	if msg.SenderID != callerID {
		return errors.Forbidden("Unauthorized to delete this message")
	}
	if err := s.repo.DeleteMessage(storeCtx, id); err != nil {
		return storeError(storeCtx, "delete message", err)
	}
	return nil
}

// ListConversation returns the messages between userID and otherID, oldest first.
func (s *MessageService) ListConversation(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	msgs, err := s.repo.ListConversation(storeCtx, userID, otherID)
	if err != nil {
		return nil, storeError(storeCtx, "list messages", err)
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	return msgs, nil
}

// ListChats returns userID's conversations with the other participant's profile.
func (s *MessageService) ListChats(ctx context.Context, userID string) ([]*model.ChatSummary, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	chats, err := s.repo.ListChats(storeCtx, userID)
	if err != nil {
		return nil, storeError(storeCtx, "list chats", err)
	}

	ids := make([]string, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.Other(userID))
	}
	users := map[string]*model.User{}
	if len(ids) > 0 {
		users, err = s.users.FindByIDs(storeCtx, ids)
		if err != nil {
			return nil, storeError(storeCtx, "load chat users", err)
		}
	}

	summaries := make([]*model.ChatSummary, 0, len(chats))
	for _, c := range chats {
		other := c.Other(userID)
		summary := &model.ChatSummary{
			ChatID:        c.ID,
			UserID:        other,
			DisplayName:   defaultChatName,
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
		}
		if u, ok := users[other]; ok {
			if u.DisplayName != "" {
				summary.DisplayName = u.DisplayName
			}
			summary.PhotoURL = u.PhotoURL
		}
		if summary.PhotoURL == "" {
			summary.PhotoURL = model.DefaultAvatarURL(summary.DisplayName)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// MarkRead flags the messages otherID sent to userID as read.
func (s *MessageService) MarkRead(ctx context.Context, userID, otherID string) (int64, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	n, err := s.repo.MarkRead(storeCtx, userID, otherID)
	if err != nil {
		return 0, storeError(storeCtx, "mark messages read", err)
	}
	return n, nil
}

// SubscribeConversation streams new messages between userID and otherID.
func (s *MessageService) SubscribeConversation(ctx context.Context, userID, otherID string) (<-chan *model.Message, func(), error) {
	if s.broker == nil {
		return nil, nil, errors.New(errors.ErrInternal, "live updates are not available")
	}
	if otherID == "" || otherID == userID {
		return nil, nil, errors.Validation("invalid conversation")
	}

	sub, err := s.broker.Subscribe(ctx, realtime.ChatChannel(model.ChatID(userID, otherID)))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCache, "failed to subscribe to the conversation", err)
	}
	return decodeStream[model.Message](ctx, sub), sub.Close, nil
}
