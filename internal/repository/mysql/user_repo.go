package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const userColumns = `id, email, display_name, photo_url, bio, password_hash, provider,
	email_notifications, push_notifications, new_messages, new_comments, job_applications, marketing_emails,
	created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	s := &user.NotificationSettings
	err := row.Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.PhotoURL, &user.Bio, &user.PasswordHash, &user.Provider,
		&s.EmailNotifications, &s.PushNotifications, &s.NewMessages, &s.NewComments, &s.JobApplications, &s.MarketingEmails,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	s := user.NotificationSettings
	query := `INSERT INTO users (` + userColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.DisplayName, user.PhotoURL, user.Bio, user.PasswordHash, user.Provider,
		s.EmailNotifications, s.PushNotifications, s.NewMessages, s.NewComments, s.JobApplications, s.MarketingEmails,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return errors.New(errors.ErrEmailInUse, "email-already-in-use")
		}
		util.Logger.Error("failed to create user", zap.Error(err), zap.String("email", user.Email))
		return err
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = ?`, arg)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.ErrUserNotFound, "user-not-found")
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

// exec runs an update on a single user row and reports a missing user.
func (r *userRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		util.Logger.Error("failed to update user", zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New(errors.ErrUserNotFound, "user-not-found")
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) error {
	return r.exec(ctx, `UPDATE users
		SET display_name = COALESCE(?, display_name), bio = COALESCE(?, bio), updated_at = ?
		WHERE id = ?`,
		update.DisplayName, update.Bio, time.Now().UTC(), id)
}

func (r *userRepository) UpdatePhotoURL(ctx context.Context, id, photoURL string) error {
	return r.exec(ctx, `UPDATE users SET photo_url = ?, updated_at = ? WHERE id = ?`,
		photoURL, time.Now().UTC(), id)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
}

func (r *userRepository) UpdateNotificationSettings(ctx context.Context, id string, s model.NotificationSettings) error {
	return r.exec(ctx, `UPDATE users
		SET email_notifications = ?, push_notifications = ?, new_messages = ?,
		    new_comments = ?, job_applications = ?, marketing_emails = ?, updated_at = ?
		WHERE id = ?`,
		s.EmailNotifications, s.PushNotifications, s.NewMessages,
		s.NewComments, s.JobApplications, s.MarketingEmails, time.Now().UTC(), id)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
