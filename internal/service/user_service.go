package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
	"github.com/zack12Ali/sb1-a2fvdq/internal/storage"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength  = 6
	MaxFailedSignIns   = 5
	FailedSignInWindow = 15 * time.Minute
	MaxAvatarSize      = 5 << 20
)

var supportedProviders = map[string]bool{"google": true, "github": true}

// UserService is the identity provider: accounts, sessions and profiles.
type UserService struct {
	userRepo       interfaces.UserRepository
	sessions       interfaces.SessionStore
	uploader       storage.Uploader
	mailer         Mailer
	validate       *validator.Validate
	providerSecret string
	hashCost       int
	timeout        time.Duration
	now            func() time.Time
}

// NewUserService creates the identity provider. uploader and mailer may be nil.
func NewUserService(userRepo interfaces.UserRepository, sessions interfaces.SessionStore, uploader storage.Uploader, mailer Mailer) *UserService {
	return &UserService{
		userRepo:       userRepo,
		sessions:       sessions,
		uploader:       uploader,
		mailer:         mailer,
		validate:       validator.New(),
		providerSecret: config.AppConfig.OAuthProviderSecret,
		hashCost:       bcrypt.DefaultCost,
		timeout:        config.AppConfig.StoreTimeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type UserServiceInterface interface {
	SignUp(ctx context.Context, email, password, displayName string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	SignInWithProvider(ctx context.Context, provider, idToken string) (*model.User, error)
	SignOut(ctx context.Context, token string) error
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
	CurrentUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
	UpdateNotificationSettings(ctx context.Context, id string, settings model.NotificationSettings) error
	UploadAvatar(ctx context.Context, id string, file *multipart.FileHeader) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

var _ UserServiceInterface = (*UserService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New(errors.ErrWeakPassword, "weak-password")
	}
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", errors.Wrap(errors.ErrInternal, "failed to hash password", err)
	}
	return string(hashed), nil
}

// SignUp creates an email/password account.
func (s *UserService) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidEmail, "invalid-email", err)
	}
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:                   uuid.NewString(),
		Email:                email,
		DisplayName:          strings.TrimSpace(displayName),
		Bio:                  "",
		PasswordHash:         hashed,
		NotificationSettings: model.DefaultNotificationSettings(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.userRepo.Create(storeCtx, user); err != nil {
		return nil, storeError(storeCtx, "create user", err)
	}

	util.Logger.Info("user signed up", util.UserID(user.ID))
	return user, nil
}

// SignIn checks email and password. After MaxFailedSignIns failures within
// FailedSignInWindow the email is locked until the window expires.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	key := "signin:" + email

	if failures, err := s.sessions.FailedSignIns(ctx, key); err != nil {
		util.Logger.Warn("failed to read sign-in failures", zap.Error(err))
	} else if failures >= MaxFailedSignIns {
		return nil, errors.New(errors.ErrTooManyRequests, "too-many-requests")
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	user, err := s.userRepo.FindByEmail(storeCtx, email)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			s.recordFailure(ctx, key)
		}
		return nil, storeError(storeCtx, "find user", err)
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, key)
		return nil, errors.New(errors.ErrWrongPassword, "wrong-password")
	}

	if err := s.sessions.ResetFailedSignIns(ctx, key); err != nil {
		util.Logger.Warn("failed to reset sign-in failures", zap.Error(err))
	}

	util.Logger.Info("user signed in", util.UserID(user.ID))
	return user, nil
}

func (s *UserService) recordFailure(ctx context.Context, key string) {
	if _, err := s.sessions.RecordFailedSignIn(ctx, key, FailedSignInWindow); err != nil {
		util.Logger.Warn("failed to record sign-in failure", zap.Error(err))
	}
}

// SignInWithProvider accepts an identity token from a trusted provider and creates the
// account on first use.
func (s *UserService) SignInWithProvider(ctx context.Context, provider, idToken string) (*model.User, error) {
	if !supportedProviders[provider] {
		return nil, errors.Validation(fmt.Sprintf("unsupported provider %q", provider))
	}

	claims, err := util.ParseProviderToken(idToken, s.providerSecret)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidToken, "invalid provider token", err)
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	email := normalizeEmail(claims.Email)
	user, err := s.userRepo.FindByEmail(storeCtx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errors.ErrUserNotFound) {
		return nil, storeError(storeCtx, "find user", err)
	}

	now := s.now()
	user = &model.User{
		ID:                   uuid.NewString(),
		Email:                email,
		DisplayName:          claims.Name,
		PhotoURL:             claims.Picture,
		Provider:             provider,
		NotificationSettings: model.DefaultNotificationSettings(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.userRepo.Create(storeCtx, user); err != nil {
		return nil, storeError(storeCtx, "create user", err)
	}

	util.Logger.Info("user signed up with provider", util.UserID(user.ID), zap.String("provider", provider))
	return user, nil
}

// SignOut revokes token until it would have expired anyway.
func (s *UserService) SignOut(ctx context.Context, token string) error {
	expiry, err := util.TokenExpiry(token)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidToken, "invalid token", err)
	}
	if err := s.sessions.RevokeToken(ctx, token, expiry); err != nil {
		return errors.Wrap(errors.ErrCache, "failed to revoke token", err)
	}
	return nil
}

func (s *UserService) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := s.sessions.IsTokenRevoked(ctx, token)
	if err != nil {
		return false, errors.Wrap(errors.ErrCache, "failed to check token", err)
	}
	return revoked, nil
}

func (s *UserService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(storeCtx, id)
	if err != nil {
		return nil, storeError(storeCtx, "find user", err)
	}
	return user, nil
}

// UpdateProfile changes the display name and bio. An empty display name is ignored.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	if update.DisplayName != nil && strings.TrimSpace(*update.DisplayName) == "" {
		update.DisplayName = nil
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if update.DisplayName != nil || update.Bio != nil {
		if err := s.userRepo.UpdateProfile(storeCtx, id, update); err != nil {
			return nil, storeError(storeCtx, "update profile", err)
		}
	}

	user, err := s.userRepo.FindByID(storeCtx, id)
	if err != nil {
		return nil, storeError(storeCtx, "find user", err)
	}
	return user, nil
}

// ChangePassword re-checks the current password before replacing it.
func (s *UserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(storeCtx, id)
	if err != nil {
		return storeError(storeCtx, "find user", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return errors.New(errors.ErrWrongPassword, "Current password is incorrect")
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(storeCtx, id, hashed); err != nil {
		return storeError(storeCtx, "update password", err)
	}

	util.Logger.Info("password changed", util.UserID(id))
	return nil
}

func (s *UserService) UpdateNotificationSettings(ctx context.Context, id string, settings model.NotificationSettings) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.userRepo.UpdateNotificationSettings(storeCtx, id, settings); err != nil {
		return storeError(storeCtx, "update notification settings", err)
	}
	return nil
}

// UploadAvatar stores an image and makes it the user's photo. Posts keep the photo they
// were created with.
func (s *UserService) UploadAvatar(ctx context.Context, id string, file *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", errors.New(errors.ErrInternal, "uploads are not configured")
	}
	if file == nil {
		return "", errors.Validation("no file uploaded")
	}
	if file.Size > MaxAvatarSize {
		return "", errors.Validation("avatar must be at most 5MB")
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.Validation("avatar must be an image")
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(errors.ErrBadRequest, "failed to read upload", err)
	}
	defer src.Close()

	url, err := s.uploader.Upload(ctx, storage.Object{
		Path:        path.Join("avatars", id, util.GenerateUniqueFilename(file.Filename)),
		Body:        src,
		Size:        file.Size,
		ContentType: contentType,
	})
	if err != nil {
		util.Logger.Error("avatar upload failed", zap.Error(err), util.UserID(id))
		return "", errors.Wrap(errors.ErrInternal, "failed to upload avatar", err)
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.userRepo.UpdatePhotoURL(storeCtx, id, url); err != nil {
		return "", storeError(storeCtx, "update photo", err)
	}

	util.Logger.Info("avatar updated", util.UserID(id), zap.String("url", url))
	return url, nil
}

// RequestPasswordReset emails a reset link to the owner of email.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	if s.mailer == nil || !s.mailer.Enabled() {
		return errors.New(errors.ErrInternal, "email is not configured")
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	user, err := s.userRepo.FindByEmail(storeCtx, normalizeEmail(email))
	if err != nil {
		return storeError(storeCtx, "find user", err)
	}

	token, err := util.GeneratePasswordResetToken(user.ID)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to create reset token", err)
	}
	if err := s.mailer.SendPasswordResetEmail(user.Email, token); err != nil {
		return errors.Wrap(errors.ErrUpstream, "failed to send reset email", err)
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := util.ParsePasswordResetToken(token)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidToken, "invalid or expired reset token", err)
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.userRepo.UpdatePassword(storeCtx, userID, hashed); err != nil {
		return storeError(storeCtx, "update password", err)
	}

	util.Logger.Info("password reset", util.UserID(userID))
	return nil
}
