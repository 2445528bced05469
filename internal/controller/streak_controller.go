package controller

import (
	"strconv"
	"time"

	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StreakController struct {
	Service *service.StreakService
}

func NewStreakController(svc *service.StreakService) *StreakController {
	return &StreakController{Service: svc}
}

// @Summary Record today's check-in
// @Tags Streak
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/streak/checkin [post]
func (c *StreakController) CheckIn(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Service.CheckIn(ctx.Request.Context(), user.UserID, time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary Current streak status
// @Tags Streak
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/streak [get]
func (c *StreakController) GetStreak(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Service.GetStreak(user.UserID, time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary Streak leaderboard
// @Tags Streak
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Rows" default(10)
// @Success 200 {object} util.Response
// @Router /api/streak/leaderboard [get]
func (c *StreakController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	entries, err := c.Service.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
