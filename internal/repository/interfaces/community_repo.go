package interfaces

import (
	"context"

	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

// PostRepository stores community posts and their comments.
//
// Implementations report a missing post as errors.ErrResourceNotFound and a write by someone
// other than the author as errors.ErrForbidden. UpdatePost, DeletePost, ToggleLike and
// AddComment must each be atomic with respect to concurrent callers.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListRecentPosts(ctx context.Context, limit int) ([]*model.Post, error)
	// UpdatePost applies update only when the stored post is owned by authorID.
	UpdatePost(ctx context.Context, id, authorID string, update model.PostUpdate) error
	// DeletePost removes the post and its comments when owned by authorID.
	DeletePost(ctx context.Context, id, authorID string) error
	// ToggleLike flips userID's membership in the like set and returns the new state.
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	// AddComment inserts the comment and increments the post's comment counter.
	AddComment(ctx context.Context, comment *model.Comment) error
	// ListComments returns the comments of a post, newest first.
	ListComments(ctx context.Context, postID string) ([]*model.Comment, error)
	// CountActivity fills the post, comment and like totals of stats.
	CountActivity(ctx context.Context, stats *model.CommunityStats) error
}
