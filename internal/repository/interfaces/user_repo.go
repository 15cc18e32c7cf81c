package interfaces

import (
	"context"

	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

// UserRepository stores accounts. A missing user is errors.ErrUserNotFound and a duplicate
// email on Create is errors.ErrEmailInUse.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) error
	UpdatePhotoURL(ctx context.Context, id, photoURL string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateNotificationSettings(ctx context.Context, id string, settings model.NotificationSettings) error
	Count(ctx context.Context) (int64, error)
}
