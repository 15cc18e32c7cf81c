package message

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/sse"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
)

// MessageHandler serves direct messages. :userId is always the other participant.
type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) ListChats(c *gin.Context) {
	chats, err := h.messages.ListChats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"chats": chats}, "")
}

func (h *MessageHandler) ListConversation(c *gin.Context) {
	msgs, err := h.messages.ListConversation(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"messages": msgs}, "")
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required,notblank"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "message cannot be empty", err))
		return
	}

	msg, err := h.messages.SendMessage(c.Request.Context(), middleware.UserID(c), c.Param("userId"), req.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccessWithStatus(c, http.StatusCreated, msg, "")
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	n, err := h.messages.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"updated": n}, "")
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	if err := h.messages.DeleteMessage(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "Message deleted")
}

// StreamConversation pushes new messages of the conversation until the client leaves.
func (h *MessageHandler) StreamConversation(c *gin.Context) {
	live, stop, err := h.messages.SubscribeConversation(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	sse.Stream(c, "message", live, stop)
}
