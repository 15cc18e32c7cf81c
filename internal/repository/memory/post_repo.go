// Package memory holds an in-process post store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

type postRepository struct {
	mu       sync.RWMutex
	posts    map[string]*model.Post
	comments map[string][]*model.Comment
}

func NewPostRepository() *postRepository {
	return &postRepository{
		posts:    make(map[string]*model.Post),
		comments: make(map[string][]*model.Comment),
	}
}

func (r *postRepository) CreatePost(ctx context.Context, post *model.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; exists {
		return errors.New(errors.ErrResourceExists, "post already exists")
	}
	r.posts[post.ID] = post.Clone()
	return nil
}

func (r *postRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, errors.NotFound("post not found")
	}
	return post.Clone(), nil
}

func (r *postRepository) ListRecentPosts(ctx context.Context, limit int) ([]*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	posts := make([]*model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p.Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// owned returns the stored post when authorID may write it. Callers hold the write lock.
func (r *postRepository) owned(id, authorID string) (*model.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, errors.NotFound("post not found")
	}
	if post.AuthorID != authorID {
		return nil, errors.Forbidden("only the author can modify this post")
	}
	return post, nil
}

func (r *postRepository) UpdatePost(ctx context.Context, id, authorID string, update model.PostUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	post, err := r.owned(id, authorID)
	if err != nil {
		return err
	}
	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Description != nil {
		post.Description = *update.Description
		post.Tags = append([]string(nil), update.Tags...)
	}
	updatedAt := update.UpdatedAt
	post.UpdatedAt = &updatedAt
	return nil
}

func (r *postRepository) DeletePost(ctx context.Context, id, authorID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.owned(id, authorID); err != nil {
		return err
	}
	delete(r.posts, id)
	delete(r.comments, id)
	return nil
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return false, errors.NotFound("post not found")
	}

	for i, id := range post.LikedBy {
		if id == userID {
			post.LikedBy = append(post.LikedBy[:i], post.LikedBy[i+1:]...)
			post.Likes = len(post.LikedBy)
			return false, nil
		}
	}
	post.LikedBy = append(post.LikedBy, userID)
	post.Likes = len(post.LikedBy)
	return true, nil
}

func (r *postRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[comment.PostID]
	if !ok {
		return errors.NotFound("post not found")
	}
	cp := *comment
	r.comments[comment.PostID] = append(r.comments[comment.PostID], &cp)
	post.Comments++
	return nil
}

func (r *postRepository) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	stored := r.comments[postID]
	comments := make([]*model.Comment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		cp := *stored[i]
		comments = append(comments, &cp)
	}
	r.mu.RUnlock()

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *postRepository) CountActivity(ctx context.Context, stats *model.CommunityStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats.TotalPosts = int64(len(r.posts))
	for _, p := range r.posts {
		stats.TotalComments += int64(p.Comments)
		stats.TotalLikes += int64(p.Likes)
	}
	return nil
}
