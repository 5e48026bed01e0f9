package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wanderwalks/service-walks/internal/application"
	"github.com/wanderwalks/service-walks/internal/platform/middleware"
	"github.com/wanderwalks/service-walks/internal/platform/response"
)

// StatsHandler handles HTTP requests for dashboard statistics.
type StatsHandler struct {
	service *application.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(service *application.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// RegisterRoutes registers the stats routes on the given router group.
func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/api/v1/stats")
	stats.Use(middleware.IdentityMiddleware())
	{
		stats.GET("", h.Get)
	}
}

// Get handles GET /api/v1/stats.
func (h *StatsHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
