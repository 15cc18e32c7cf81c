package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/events"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const (
	NotificationListLimit = 50
	defaultActorName      = "Someone"
)

// NotificationService turns domain events into per-user notifications.
type NotificationService struct {
	repo    interfaces.NotificationRepository
	users   interfaces.UserRepository
	mailer  Mailer
	timeout time.Duration
	now     func() time.Time
}

// NewNotificationService creates the service. mailer may be nil.
func NewNotificationService(repo interfaces.NotificationRepository, users interfaces.UserRepository, mailer Mailer) *NotificationService {
	return &NotificationService{
		repo:    repo,
		users:   users,
		mailer:  mailer,
		timeout: config.AppConfig.StoreTimeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns the newest notifications of userID.
func (s *NotificationService) List(ctx context.Context, userID string) ([]*model.Notification, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	list, err := s.repo.ListByUser(storeCtx, userID, NotificationListLimit)
	if err != nil {
		return nil, storeError(storeCtx, "list notifications", err)
	}
	if list == nil {
		list = []*model.Notification{}
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.repo.MarkRead(storeCtx, userID, id); err != nil {
		return storeError(storeCtx, "mark notification read", err)
	}
	return nil
}

// HandleEvent is an events.Handler. Events the recipient opted out of, and events users
// cause on their own content, produce nothing.
func (s *NotificationService) HandleEvent(ctx context.Context, e events.Event) error {
	if e.RecipientID == "" || e.RecipientID == e.ActorID {
		return nil
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	recipient, err := s.users.FindByID(storeCtx, e.RecipientID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			util.Logger.Debug("dropping event for unknown user", util.UserID(e.RecipientID))
			return nil
		}
		return storeError(storeCtx, "find recipient", err)
	}
	if !wants(recipient.NotificationSettings, e.Type) {
		return nil
	}

	actor := e.ActorName
	if actor == "" {
		actor = s.actorName(storeCtx, e.ActorID)
	}

	n := render(e, actor)
	if n == nil {
		util.Logger.Warn("unknown event type", zap.String("type", e.Type))
		return nil
	}
	n.ID = uuid.NewString()
	n.UserID = recipient.ID
	n.Timestamp = s.now()

	if err := s.repo.Create(storeCtx, n); err != nil {
		return storeError(storeCtx, "create notification", err)
	}

	if recipient.NotificationSettings.EmailNotifications && s.mailer != nil && s.mailer.Enabled() && recipient.Email != "" {
		if err := s.mailer.SendNotificationEmail(recipient.Email, recipient.DisplayName, n.Message, n.Link); err != nil {
			util.Logger.Warn("notification email failed", zap.Error(err), util.UserID(recipient.ID))
		}
	}
	return nil
}

func (s *NotificationService) actorName(ctx context.Context, actorID string) string {
	if actorID == "" {
		return defaultActorName
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil || actor.DisplayName == "" {
		return defaultActorName
	}
	return actor.DisplayName
}

// wants reports whether settings allow notifications of eventType. Likes follow the
// comment setting.
func wants(settings model.NotificationSettings, eventType string) bool {
	switch eventType {
	case events.PostCommented, events.PostLiked:
		return settings.NewComments
	case events.MessageSent:
		return settings.NewMessages
	case events.JobApplied:
		return settings.JobApplications
	default:
		return true
	}
}

func render(e events.Event, actor string) *model.Notification {
	switch e.Type {
	case events.PostCommented:
		return &model.Notification{
			Type:    model.NotificationComment,
			Message: fmt.Sprintf("%s commented on your post: %s", actor, e.Summary),
			Link:    "/community?post=" + e.SubjectID,
		}
	case events.PostLiked:
		return &model.Notification{
			Type:    model.NotificationLike,
			Message: fmt.Sprintf("%s liked your post", actor),
			Link:    "/community?post=" + e.SubjectID,
		}
	case events.MessageSent:
		return &model.Notification{
			Type:    model.NotificationMessage,
			Message: fmt.Sprintf("New message from %s", actor),
			Link:    "/messages?user=" + e.ActorID,
		}
	case events.JobApplied:
		return &model.Notification{
			Type:    model.NotificationJob,
			Message: fmt.Sprintf("%s applied to your job: %s", actor, e.Summary),
			Link:    "/jobs",
		}
	default:
		return nil
	}
}
