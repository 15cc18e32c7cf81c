package community

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/sse"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

// ProfileLookup loads the profile snapshotted onto new posts.
type ProfileLookup interface {
	CurrentUser(ctx context.Context, id string) (*model.User, error)
}

// CommunityHandler serves posts, likes, comments and the live feed.
type CommunityHandler struct {
	posts *service.PostService
	users ProfileLookup
}

func NewCommunityHandler(posts *service.PostService, users ProfileLookup) *CommunityHandler {
	return &CommunityHandler{
		posts: posts,
		users: users,
	}
}

type postRequest struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description" binding:"required,notblank"`
}

type editRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

func (h *CommunityHandler) ListPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errors.HandleError(c, errors.Validation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	posts, err := h.posts.ListRecentPosts(c.Request.Context(), limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"posts": posts}, "")
}

func (h *CommunityHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, post, "")
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "title and description are required", err))
		return
	}

	userID := middleware.UserID(c)
	post, err := h.posts.CreatePost(c.Request.Context(), req.Title, req.Description, userID, h.authorDisplay(c, userID))
	if err != nil {
		util.Logger.Error("failed to create post", zap.Error(err), util.UserID(userID))
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccessWithStatus(c, http.StatusCreated, post, "post created")
}

// authorDisplay snapshots the caller's profile for a new post. An unknown profile falls
// back to the anonymous defaults.
func (h *CommunityHandler) authorDisplay(c *gin.Context, userID string) model.AuthorDisplay {
	user, err := h.users.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		util.Logger.Warn("posting without a profile", zap.Error(err), util.UserID(userID))
		return model.AuthorDisplay{}
	}
	return user.Display()
}

func (h *CommunityHandler) UpdatePost(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request body", err))
		return
	}

	postID := c.Param("id")
	err := h.posts.EditPost(c.Request.Context(), postID, middleware.UserID(c), service.PostEdit{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, post, "post updated")
}

func (h *CommunityHandler) DeletePost(c *gin.Context) {
	if err := h.posts.DeletePost(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "post deleted")
}

func (h *CommunityHandler) ToggleLike(c *gin.Context) {
	postID := c.Param("id")
	liked, err := h.posts.ToggleLike(c.Request.Context(), postID, middleware.UserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	resp := gin.H{"liked": liked}
	if post, err := h.posts.GetPost(c.Request.Context(), postID); err == nil {
		resp["likes"] = post.Likes
	}
	errors.HandleSuccess(c, resp, "")
}

func (h *CommunityHandler) ListComments(c *gin.Context) {
	comments, err := h.posts.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"comments": comments}, "")
}

func (h *CommunityHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "comment cannot be empty", err))
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccessWithStatus(c, http.StatusCreated, comment, "")
}

// StreamPosts pushes each new post to the client until it disconnects.
func (h *CommunityHandler) StreamPosts(c *gin.Context) {
	feed, stop, err := h.posts.SubscribeFeed(c.Request.Context())
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	sse.Stream(c, "post", feed, stop)
}
