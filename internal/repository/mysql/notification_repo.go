package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, message, link, is_read, created_at)
         VALUES (?, ?, ?, ?, ?, FALSE, ?)`,
		n.ID, n.UserID, string(n.Type), n.Message, n.Link, n.Timestamp)
	return err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, message, link, is_read, read_at, created_at
         FROM notifications WHERE user_id = ?
         ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*model.Notification{}
	for rows.Next() {
		var (
			n      model.Notification
			typ    string
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Message, &n.Link, &n.Read, &readAt, &n.Timestamp); err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(typ)
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = ? WHERE id = ? AND user_id = ?`,
		time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("notification not found")
	}
	return nil
}
