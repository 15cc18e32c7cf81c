package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

func seedPost(t *testing.T, repo *postRepository, id, author string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.CreatePost(context.Background(), &model.Post{
		ID:          id,
		Title:       "title " + id,
		Description: "desc",
		AuthorID:    author,
		CreatedAt:   createdAt,
		LikedBy:     []string{},
		Tags:        []string{"startup"},
	}))
}

func TestToggleLikeConcurrent(t *testing.T) {
	repo := NewPostRepository()
	seedPost(t, repo, "p1", "author", time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i%10)
			_, err := repo.ToggleLike(context.Background(), "p1", user)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	post, err := repo.GetPostByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, len(post.LikedBy), post.Likes)
	// each of the 10 users toggled 5 times
	assert.Equal(t, 10, post.Likes)
}

func TestUpdatePostOwnership(t *testing.T) {
	repo := NewPostRepository()
	seedPost(t, repo, "p1", "author", time.Now())
	title := "changed"

	err := repo.UpdatePost(context.Background(), "p1", "intruder", model.PostUpdate{Title: &title, UpdatedAt: time.Now()})
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	post, _ := repo.GetPostByID(context.Background(), "p1")
	assert.Equal(t, "title p1", post.Title)
	assert.Nil(t, post.UpdatedAt)

	err = repo.UpdatePost(context.Background(), "missing", "author", model.PostUpdate{Title: &title})
	assert.True(t, errors.Is(err, errors.ErrResourceNotFound))
}

func TestDeletePostRemovesComments(t *testing.T) {
	repo := NewPostRepository()
	ctx := context.Background()
	seedPost(t, repo, "p1", "author", time.Now())
	require.NoError(t, repo.AddComment(ctx, &model.Comment{ID: "c1", PostID: "p1", AuthorID: "u", Content: "hi", CreatedAt: time.Now()}))

	require.NoError(t, repo.DeletePost(ctx, "p1", "author"))

	comments, err := repo.ListComments(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = repo.ToggleLike(ctx, "p1", "u")
	assert.True(t, errors.Is(err, errors.ErrResourceNotFound))
}

func TestListRecentPostsOrderAndLimit(t *testing.T) {
	repo := NewPostRepository()
	base := time.Now()
	for i := 0; i < 5; i++ {
		seedPost(t, repo, fmt.Sprintf("p%d", i), "author", base.Add(time.Duration(i)*time.Minute))
	}

	posts, err := repo.ListRecentPosts(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "p4", posts[0].ID)
	assert.Equal(t, "p3", posts[1].ID)
	assert.Equal(t, "p2", posts[2].ID)
}

func TestReturnedPostsAreCopies(t *testing.T) {
	repo := NewPostRepository()
	seedPost(t, repo, "p1", "author", time.Now())

	post, _ := repo.GetPostByID(context.Background(), "p1")
	post.LikedBy = append(post.LikedBy, "ghost")
	post.Likes = 1

	stored, _ := repo.GetPostByID(context.Background(), "p1")
	assert.Equal(t, 0, stored.Likes)
	assert.Empty(t, stored.LikedBy)
}
