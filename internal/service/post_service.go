package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/events"
	"github.com/zack12Ali/sb1-a2fvdq/internal/metrics"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/realtime"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
	"github.com/zack12Ali/sb1-a2fvdq/internal/telemetry"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// PostEdit carries the fields a caller wants to change. Nil fields are left alone.
type PostEdit struct {
	Title       *string
	Description *string
}

// PostService implements the community engine: posts, likes, comments and the feed.
// The caller's identity is always an explicit argument.
type PostService struct {
	repo      interfaces.PostRepository
	broker    realtime.Broker
	publisher events.Publisher
	timeout   time.Duration
	pageSize  int
	now       func() time.Time
	newID     func() string
}

// NewPostService wires the engine. broker and publisher may be nil.
func NewPostService(repo interfaces.PostRepository, broker realtime.Broker, publisher events.Publisher) *PostService {
	pageSize := config.AppConfig.FeedPageSize
	if pageSize <= 0 || pageSize > MaxFeedLimit {
		pageSize = DefaultFeedLimit
	}
	return &PostService{
		repo:      repo,
		broker:    broker,
		publisher: publisher,
		timeout:   config.AppConfig.StoreTimeout,
		pageSize:  pageSize,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *PostService) CreatePost(ctx context.Context, title, description, authorID string, author model.AuthorDisplay) (*model.Post, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "PostService.CreatePost")
	defer span.End()

	if strings.TrimSpace(title) == "" {
		return nil, errors.Validation("title is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, errors.Validation("description is required")
	}
	if authorID == "" {
		return nil, errors.Validation("author is required")
	}

	display := author.Resolve()
	post := &model.Post{
		ID:             s.newID(),
		Title:          title,
		Description:    description,
		AuthorID:       authorID,
		AuthorName:     display.Name,
		AuthorPhotoURL: display.PhotoURL,
		CreatedAt:      s.now(),
		Likes:          0,
		LikedBy:        []string{},
		Comments:       0,
		Tags:           util.ExtractTags(description),
	}
	span.SetAttributes(attribute.String("post.id", post.ID))

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.repo.CreatePost(storeCtx, post); err != nil {
		return nil, storeError(storeCtx, "create post", err)
	}

	metrics.PostsCreated.Inc()
	util.Logger.Info("post created", util.PostID(post.ID), util.UserID(authorID), zap.Strings("tags", post.Tags))

	s.broadcast(ctx, post)
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*model.Post, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	post, err := s.repo.GetPostByID(storeCtx, postID)
	if err != nil {
		return nil, storeError(storeCtx, "load post", err)
	}
	return post, nil
}

// EditPost applies edit when callerID is the author. The change is a single conditional write,
// so a rejected edit leaves the post untouched.
func (s *PostService) EditPost(ctx context.Context, postID, callerID string, edit PostEdit) error {
	ctx, span := telemetry.Tracer().Start(ctx, "PostService.EditPost")
	defer span.End()

	if edit.Title == nil && edit.Description == nil {
		return errors.Validation("nothing to update")
	}
	if edit.Title != nil && strings.TrimSpace(*edit.Title) == "" {
		return errors.Validation("title cannot be empty")
	}
	if edit.Description != nil && strings.TrimSpace(*edit.Description) == "" {
		return errors.Validation("description cannot be empty")
	}

	update := model.PostUpdate{
		Title:       edit.Title,
		Description: edit.Description,
		UpdatedAt:   s.now(),
	}
	if edit.Description != nil {
		update.Tags = util.ExtractTags(*edit.Description)
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.repo.UpdatePost(storeCtx, postID, callerID, update); err != nil {
		return storeError(storeCtx, "update post", err)
	}

	util.Logger.Info("post updated", util.PostID(postID), util.UserID(callerID))
	return nil
}

// DeletePost removes the post together with its comments.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID string) error {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.repo.DeletePost(storeCtx, postID, callerID); err != nil {
		return storeError(storeCtx, "delete post", err)
	}

	util.Logger.Info("post deleted", util.PostID(postID), util.UserID(callerID))
	return nil
}

// ToggleLike flips userID's like on the post and returns true when the post is now liked.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "PostService.ToggleLike")
	defer span.End()

	if userID == "" {
		return false, errors.Validation("user is required")
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	liked, err := s.repo.ToggleLike(storeCtx, postID, userID)
	if err != nil {
		return false, storeError(storeCtx, "toggle like", err)
	}

	metrics.LikeToggles.WithLabelValues(metrics.LikeState(liked)).Inc()
	span.SetAttributes(attribute.Bool("post.liked", liked))

	if liked {
		s.notifyAuthor(ctx, postID, userID, events.PostLiked, "")
	}
	return liked, nil
}

func (s *PostService) AddComment(ctx context.Context, postID, authorID, content string) (*model.Comment, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "PostService.AddComment")
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return nil, errors.Validation("comment cannot be empty")
	}
	if authorID == "" {
		return nil, errors.Validation("author is required")
	}

	comment := &model.Comment{
		ID:        s.newID(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.repo.AddComment(storeCtx, comment); err != nil {
		return nil, storeError(storeCtx, "add comment", err)
	}

	metrics.CommentsAdded.Inc()
	s.notifyAuthor(ctx, postID, authorID, events.PostCommented, content)
	return comment, nil
}

// ListComments returns the comments of a post, newest first.
func (s *PostService) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	comments, err := s.repo.ListComments(storeCtx, postID)
	if err != nil {
		return nil, storeError(storeCtx, "list comments", err)
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	return comments, nil
}

// ListRecentPosts returns the newest posts. A non-positive limit means the configured page size.
func (s *PostService) ListRecentPosts(ctx context.Context, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	posts, err := s.repo.ListRecentPosts(storeCtx, limit)
	if err != nil {
		return nil, storeError(storeCtx, "list posts", err)
	}
	if posts == nil {
		posts = []*model.Post{}
	}
	return posts, nil
}

// SubscribeFeed streams newly created posts until ctx ends or the returned func is called.
func (s *PostService) SubscribeFeed(ctx context.Context) (<-chan *model.Post, func(), error) {
	if s.broker == nil {
		return nil, nil, errors.New(errors.ErrInternal, "live updates are not available")
	}

	sub, err := s.broker.Subscribe(ctx, realtime.FeedChannel)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCache, "failed to subscribe to the feed", err)
	}

	return decodeStream[model.Post](ctx, sub), sub.Close, nil
}

func (s *PostService) broadcast(ctx context.Context, post *model.Post) {
	if s.broker == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout())
	defer cancel()
	if err := s.broker.Publish(pubCtx, realtime.FeedChannel, post); err != nil {
		util.Logger.Warn("failed to broadcast post", zap.Error(err), util.PostID(post.ID))
	}
}

// notifyAuthor emits an event for the author of postID unless the actor is the author.
func (s *PostService) notifyAuthor(ctx context.Context, postID, actorID, eventType, summary string) {
	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout())
	defer cancel()

	post, err := s.repo.GetPostByID(pubCtx, postID)
	if err != nil {
		util.Logger.Warn("could not load post for notification", zap.Error(err), util.PostID(postID))
		return
	}
	if post.AuthorID == actorID {
		return
	}

	publish(pubCtx, s.publisher, events.Event{
		Type:        eventType,
		ActorID:     actorID,
		RecipientID: post.AuthorID,
		SubjectID:   postID,
		Summary:     summary,
		OccurredAt:  s.now(),
	})
}

func (s *PostService) publishTimeout() time.Duration {
	if s.timeout <= 0 {
		return defaultStoreTimeout
	}
	return s.timeout
}

// publish sends event and records the outcome; delivery failures never fail the caller.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		util.Logger.Warn("failed to publish event", zap.Error(err), zap.String("type", event.Type))
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
}
