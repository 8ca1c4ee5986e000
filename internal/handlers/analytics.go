package handlers

import (
	"context"
	"net/http"
	"time"

	"salesor-api/internal/models"
	"salesor-api/internal/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetDashboard godoc
// @Summary Get the caller's dashboard snapshot
// @Description Returns the cached analytics snapshot for the current user. Pass refresh=true to bypass the cache.
// @Tags analytics
// @Security CookieAuth
// @Produce json
// @Param refresh query string false "set to true to force recomputation"
// @Success 200 {object} models.DashboardStats
// @Failure 500 {object} models.ErrorResponse
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	userID := c.GetString("userID")
	refresh := c.Query("refresh") == "true"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := h.analytics.Dashboard(ctx, userID, refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to compute dashboard stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
