package idea

import (
	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

type IdeaHandler struct {
	ideas *service.IdeaService
}

func NewIdeaHandler(ideas *service.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideas: ideas}
}

func (h *IdeaHandler) Generate(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required,notblank"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "prompt is required", err))
		return
	}

	idea, err := h.ideas.Generate(c.Request.Context(), middleware.UserID(c), req.Prompt)
	if err != nil {
		util.Logger.Warn("idea generation request failed", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, idea, "")
}

func (h *IdeaHandler) History(c *gin.Context) {
	ideas, err := h.ideas.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"ideas": ideas}, "")
}
