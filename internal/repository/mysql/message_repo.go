package mysql

import (
	"context"
	"database/sql"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) SaveMessage(ctx context.Context, msg *model.Message, chat *model.Chat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, sender_id, receiver_id, content, is_read, created_at)
         VALUES (?, ?, ?, ?, ?, FALSE, ?)`,
		msg.ID, chat.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.Timestamp)
	if err != nil {
		util.Logger.Error("failed to insert message", zap.Error(err), zap.String("chat_id", chat.ID))
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chats (id, participant_a, participant_b, last_message, last_message_at)
         VALUES (?, ?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE last_message = VALUES(last_message), last_message_at = VALUES(last_message_at)`,
		chat.ID, chat.Participants[0], chat.Participants[1], chat.LastMessage, chat.LastMessageAt)
	if err != nil {
		util.Logger.Error("failed to upsert chat", zap.Error(err), zap.String("chat_id", chat.ID))
		return err
	}

	return tx.Commit()
}

func (r *messageRepository) GetMessageByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := r.db.QueryRowContext(ctx,
		`SELECT id, sender_id, receiver_id, content, is_read, created_at FROM messages WHERE id = ?`, id).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Read, &msg.Timestamp)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("message not found")
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) DeleteMessage(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("message not found")
	}
	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, content, is_read, created_at
         FROM messages WHERE chat_id = ?
         ORDER BY created_at ASC`, model.ChatID(userID, otherID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*model.Message{}
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Read, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func (r *messageRepository) ListChats(ctx context.Context, userID string) ([]*model.Chat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, participant_a, participant_b, last_message, last_message_at
         FROM chats WHERE participant_a = ? OR participant_b = ?
         ORDER BY last_message_at DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []*model.Chat{}
	for rows.Next() {
		var (
			chat model.Chat
			a, b string
		)
		if err := rows.Scan(&chat.ID, &a, &b, &chat.LastMessage, &chat.LastMessageAt); err != nil {
			return nil, err
		}
		chat.Participants = []string{a, b}
		chats = append(chats, &chat)
	}
	return chats, rows.Err()
}

func (r *messageRepository) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE WHERE receiver_id = ? AND sender_id = ? AND is_read = FALSE`,
		receiverID, senderID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
