package stats

import (
	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) GetCommunityStats(c *gin.Context) {
	stats, err := h.stats.GetCommunityStats(c.Request.Context())
	if err != nil {
		util.Logger.Error("failed to load community stats", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, stats, "")
}
