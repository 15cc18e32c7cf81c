package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const postColumns = `id, title, description, author_id, author_name, author_photo_url,
	likes, comments, tags, created_at, updated_at`

type communityRepository struct {
	db *sql.DB
}

func NewCommunityRepository(db *sql.DB) *communityRepository {
	return &communityRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		post      model.Post
		tags      []byte
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&post.ID, &post.Title, &post.Description, &post.AuthorID, &post.AuthorName, &post.AuthorPhotoURL,
		&post.Likes, &post.Comments, &tags, &post.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &post.Tags); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		post.UpdatedAt = &t
	}
	post.LikedBy = []string{}
	return &post, nil
}

func (r *communityRepository) CreatePost(ctx context.Context, post *model.Post) error {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (id, title, description, author_id, author_name, author_photo_url,
              likes, comments, tags, created_at)
              VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Description, post.AuthorID, post.AuthorName, post.AuthorPhotoURL,
		string(tags), post.CreatedAt)
	if err != nil {
		util.Logger.Error("failed to insert post", zap.Error(err), util.PostID(post.ID))
		return err
	}
	return nil
}

func (r *communityRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("post not found")
		}
		return nil, err
	}

	likedBy, err := r.likedBy(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if users, ok := likedBy[id]; ok {
		post.LikedBy = users
	}
	return post, nil
}

func (r *communityRepository) ListRecentPosts(ctx context.Context, limit int) ([]*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		util.Logger.Error("failed to list posts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	posts := make([]*model.Post, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
		ids = append(ids, post.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return posts, nil
	}

	likedBy, err := r.likedBy(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		if users, ok := likedBy[post.ID]; ok {
			post.LikedBy = users
		}
	}
	return posts, nil
}

func (r *communityRepository) likedBy(ctx context.Context, postIDs []string) (map[string][]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(postIDs)), ",")
	args := make([]interface{}, len(postIDs))
	for i, id := range postIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id, user_id FROM post_likes WHERE post_id IN (`+placeholders+`) ORDER BY created_at ASC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string, len(postIDs))
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, err
		}
		result[postID] = append(result[postID], userID)
	}
	return result, rows.Err()
}

// checkAuthor distinguishes a missing post from a post owned by someone else.
func checkAuthor(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}, id, authorID, lock string) error {
	var owner string
	err := q.QueryRowContext(ctx, `SELECT author_id FROM posts WHERE id = ?`+lock, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return errors.NotFound("post not found")
	}
	if err != nil {
		return err
	}
	if owner != authorID {
		return errors.Forbidden("only the author can modify this post")
	}
	return nil
}

func (r *communityRepository) UpdatePost(ctx context.Context, id, authorID string, update model.PostUpdate) error {
	var tags interface{}
	if update.Description != nil {
		raw, err := json.Marshal(update.Tags)
		if err != nil {
			return err
		}
		tags = string(raw)
	}

	query := `UPDATE posts
              SET title = COALESCE(?, title),
                  description = COALESCE(?, description),
                  tags = COALESCE(?, tags),
                  updated_at = ?
              WHERE id = ? AND author_id = ?`
	result, err := r.db.ExecContext(ctx, query,
		update.Title, update.Description, tags, update.UpdatedAt, id, authorID)
	if err != nil {
		util.Logger.Error("failed to update post", zap.Error(err), util.PostID(id))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return checkAuthor(ctx, r.db, id, authorID, "")
	}
	return nil
}

func (r *communityRepository) DeletePost(ctx context.Context, id, authorID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := checkAuthor(ctx, tx, id, authorID, " FOR UPDATE"); err != nil {
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM comments WHERE post_id = ?`,
		`DELETE FROM post_likes WHERE post_id = ?`,
		`DELETE FROM posts WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			util.Logger.Error("failed to delete post", zap.Error(err), util.PostID(id))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("failed to commit post deletion", zap.Error(err), util.PostID(id))
		return err
	}
	return nil
}

func (r *communityRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// the row lock serializes toggles on the same post
	var likes int
	err = tx.QueryRowContext(ctx, `SELECT likes FROM posts WHERE id = ? FOR UPDATE`, postID).Scan(&likes)
	if err == sql.ErrNoRows {
		return false, errors.NotFound("post not found")
	}
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = ? AND user_id = ?)`,
		postID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}

	if exists {
		if _, err = tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID); err != nil {
			return false, err
		}
		if _, err = tx.ExecContext(ctx, `UPDATE posts SET likes = likes - 1 WHERE id = ?`, postID); err != nil {
			return false, err
		}
	} else {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
			postID, userID, time.Now().UTC()); err != nil {
			return false, err
		}
		if _, err = tx.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = ?`, postID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("failed to commit like toggle", zap.Error(err), util.PostID(postID), util.UserID(userID))
		return false, err
	}
	return !exists, nil
}

func (r *communityRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE posts SET comments = comments + 1 WHERE id = ?`, comment.PostID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NotFound("post not found")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt)
	if err != nil {
		util.Logger.Error("failed to insert comment", zap.Error(err), util.PostID(comment.PostID))
		return err
	}

	return tx.Commit()
}

func (r *communityRepository) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, post_id, author_id, content, created_at
         FROM comments WHERE post_id = ?
         ORDER BY created_at DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *communityRepository) CountActivity(ctx context.Context, stats *model.CommunityStats) error {
	query := `SELECT COUNT(*), COALESCE(SUM(comments), 0), COALESCE(SUM(likes), 0) FROM posts`
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalPosts, &stats.TotalComments, &stats.TotalLikes); err != nil {
		util.Logger.Error("failed to count community activity", zap.Error(err))
		return err
	}
	return nil
}
