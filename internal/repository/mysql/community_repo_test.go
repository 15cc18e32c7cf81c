package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

func newMockRepo(t *testing.T) (*communityRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCommunityRepository(db), mock
}

func TestToggleLikeAddsLike(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT likes FROM posts WHERE id = \? FOR UPDATE`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("p1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO post_likes`).
		WithArgs("p1", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE posts SET likes = likes \+ 1 WHERE id = \?`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	liked, err := repo.ToggleLike(context.Background(), "p1", "u1")

	require.NoError(t, err)
	assert.True(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeRemovesLike(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT likes FROM posts WHERE id = \? FOR UPDATE`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(1))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("p1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM post_likes`).
		WithArgs("p1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE posts SET likes = likes - 1 WHERE id = \?`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	liked, err := repo.ToggleLike(context.Background(), "p1", "u1")

	require.NoError(t, err)
	assert.False(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeMissingPost(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT likes FROM posts WHERE id = \? FOR UPDATE`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"likes"}))
	mock.ExpectRollback()

	_, err := repo.ToggleLike(context.Background(), "gone", "u1")

	assert.True(t, errors.Is(err, errors.ErrResourceNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentMissingPost(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE posts SET comments = comments \+ 1 WHERE id = \?`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AddComment(context.Background(), &model.Comment{ID: "c1", PostID: "gone", AuthorID: "u1", Content: "hi"})

	assert.True(t, errors.Is(err, errors.ErrResourceNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentIncrementsCounter(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE posts SET comments = comments \+ 1 WHERE id = \?`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO comments`).
		WithArgs("c1", "p1", "u1", "nice", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AddComment(context.Background(), &model.Comment{ID: "c1", PostID: "p1", AuthorID: "u1", Content: "nice", CreatedAt: now})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePostByNonAuthor(t *testing.T) {
	repo, mock := newMockRepo(t)
	title := "new title"

	mock.ExpectExec(`UPDATE posts`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT author_id FROM posts WHERE id = \?`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("owner"))

	err := repo.UpdatePost(context.Background(), "p1", "intruder", model.PostUpdate{Title: &title, UpdatedAt: time.Now()})

	assert.True(t, errors.Is(err, errors.ErrForbidden))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePostCascades(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT author_id FROM posts WHERE id = \? FOR UPDATE`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("owner"))
	mock.ExpectExec(`DELETE FROM comments WHERE post_id = \?`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM post_likes WHERE post_id = \?`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM posts WHERE id = \?`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeletePost(context.Background(), "p1", "owner")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostByIDLoadsLikes(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM posts WHERE id = \?`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "author_id", "author_name", "author_photo_url",
			"likes", "comments", "tags", "created_at", "updated_at",
		}).AddRow("p1", "Pay", "Payments #fintech", "a1", "Ann", "https://x/a.png", 2, 0, []byte(`["fintech"]`), created, nil))
	mock.ExpectQuery(`SELECT post_id, user_id FROM post_likes WHERE post_id IN \(\?\)`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "user_id"}).AddRow("p1", "u1").AddRow("p1", "u2"))

	post, err := repo.GetPostByID(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, []string{"fintech"}, post.Tags)
	assert.Equal(t, []string{"u1", "u2"}, post.LikedBy)
	assert.Equal(t, 2, post.Likes)
	assert.Nil(t, post.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM posts WHERE id = \?`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetPostByID(context.Background(), "gone")

	assert.True(t, errors.Is(err, errors.ErrResourceNotFound))
}

func TestCountActivity(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(comments\), 0\), COALESCE\(SUM\(likes\), 0\) FROM posts`).
		WillReturnRows(sqlmock.NewRows([]string{"posts", "comments", "likes"}).AddRow(4, 9, 17))

	var stats model.CommunityStats
	err := repo.CountActivity(context.Background(), &stats)

	require.NoError(t, err)
	assert.Equal(t, model.CommunityStats{TotalPosts: 4, TotalComments: 9, TotalLikes: 17}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
