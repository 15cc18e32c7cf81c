// Package mongo stores community posts as documents. Like sets live inside the post document so
// toggles are single-document conditional updates; comments live in their own collection.
package mongo

import (
	"context"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	postsCollection    = "posts"
	commentsCollection = "comments"

	// a toggle races with a concurrent toggle of the same user at most a few times
	maxToggleAttempts = 5
)

// Connect opens a client and checks the server is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

type postRepository struct {
	client   *mongo.Client
	posts    *mongo.Collection
	comments *mongo.Collection
}

func NewPostRepository(client *mongo.Client, database string) *postRepository {
	db := client.Database(database)
	return &postRepository{
		client:   client,
		posts:    db.Collection(postsCollection),
		comments: db.Collection(commentsCollection),
	}
}

// EnsureIndexes creates the indexes the feed and comment queries rely on.
func (r *postRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}); err != nil {
		return err
	}
	_, err := r.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *postRepository) CreatePost(ctx context.Context, post *model.Post) error {
	doc := post.Clone()
	if doc.LikedBy == nil {
		doc.LikedBy = []string{}
	}
	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		util.Logger.Error("failed to insert post", zap.Error(err), util.PostID(post.ID))
		return err
	}
	return nil
}

func (r *postRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFound("post not found")
	}
	if err != nil {
		return nil, err
	}
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	return &post, nil
}

func (r *postRepository) ListRecentPosts(ctx context.Context, limit int) ([]*model.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		util.Logger.Error("failed to list posts", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := make([]*model.Post, 0, limit)
	for cursor.Next(ctx) {
		var post model.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, err
		}
		if post.LikedBy == nil {
			post.LikedBy = []string{}
		}
		posts = append(posts, &post)
	}
	return posts, cursor.Err()
}

// ownership explains why a write filtered on (id, author_id) matched nothing.
func (r *postRepository) ownership(ctx context.Context, id string) error {
	var doc struct {
		AuthorID string `bson:"author_id"`
	}
	err := r.posts.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"author_id": 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return errors.NotFound("post not found")
	}
	if err != nil {
		return err
	}
	return errors.Forbidden("only the author can modify this post")
}

func (r *postRepository) UpdatePost(ctx context.Context, id, authorID string, update model.PostUpdate) error {
	set := bson.M{"updated_at": update.UpdatedAt}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
		set["tags"] = update.Tags
	}

	result, err := r.posts.UpdateOne(ctx, bson.M{"_id": id, "author_id": authorID}, bson.M{"$set": set})
	if err != nil {
		util.Logger.Error("failed to update post", zap.Error(err), util.PostID(id))
		return err
	}
	if result.MatchedCount == 0 {
		return r.ownership(ctx, id)
	}
	return nil
}

func (r *postRepository) DeletePost(ctx context.Context, id, authorID string) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := r.posts.DeleteOne(sc, bson.M{"_id": id, "author_id": authorID})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return r.ownership(sc, id)
		}
		_, err = r.comments.DeleteMany(sc, bson.M{"post_id": id})
		return err
	})
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		added, err := r.posts.UpdateOne(ctx,
			bson.M{"_id": postID, "liked_by": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"liked_by": userID}, "$inc": bson.M{"likes": 1}})
		if err != nil {
			return false, err
		}
		if added.ModifiedCount == 1 {
			return true, nil
		}

		removed, err := r.posts.UpdateOne(ctx,
			bson.M{"_id": postID, "liked_by": userID},
			bson.M{"$pull": bson.M{"liked_by": userID}, "$inc": bson.M{"likes": -1}})
		if err != nil {
			return false, err
		}
		if removed.ModifiedCount == 1 {
			return false, nil
		}

		// neither filter matched: the post is gone or a concurrent toggle won the race
		count, err := r.posts.CountDocuments(ctx, bson.M{"_id": postID})
		if err != nil {
			return false, err
		}
		if count == 0 {
			return false, errors.NotFound("post not found")
		}
	}
	return false, errors.New(errors.ErrResourceConflict, "like toggle kept conflicting, try again")
}

func (r *postRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := r.posts.UpdateOne(sc, bson.M{"_id": comment.PostID}, bson.M{"$inc": bson.M{"comments": 1}})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return errors.NotFound("post not found")
		}
		_, err = r.comments.InsertOne(sc, comment)
		return err
	})
}

func (r *postRepository) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	cursor, err := r.comments.Find(ctx, bson.M{"post_id": postID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []*model.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// inTransaction runs fn in a multi-document transaction. The server must be a replica set.
func (r *postRepository) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (r *postRepository) CountActivity(ctx context.Context, stats *model.CommunityStats) error {
	cursor, err := r.posts.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "posts", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "comments", Value: bson.D{{Key: "$sum", Value: "$comments"}}},
			{Key: "likes", Value: bson.D{{Key: "$sum", Value: "$likes"}}},
		}}},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var totals []struct {
		Posts    int64 `bson:"posts"`
		Comments int64 `bson:"comments"`
		Likes    int64 `bson:"likes"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return err
	}
	if len(totals) > 0 {
		stats.TotalPosts = totals[0].Posts
		stats.TotalComments = totals[0].Comments
		stats.TotalLikes = totals[0].Likes
	}
	return nil
}
