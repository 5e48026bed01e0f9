package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wanderwalks/service-walks/internal/application"
	"github.com/wanderwalks/service-walks/internal/platform/middleware"
	"github.com/wanderwalks/service-walks/internal/platform/response"
)

// WalkHandler handles HTTP requests for saved and shared walks.
type WalkHandler struct {
	service *application.WalkService
}

// NewWalkHandler creates a new WalkHandler.
func NewWalkHandler(service *application.WalkService) *WalkHandler {
	return &WalkHandler{service: service}
}

// RegisterRoutes registers all walk routes on the given router group. The
// shared-walk lookup is public: possession of a share code grants read access.
func (h *WalkHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/walks/shared/:shareID", h.GetShared)

	walks := r.Group("/api/v1/walks")
	walks.Use(middleware.IdentityMiddleware())
	{
		walks.POST("", h.Save)
		walks.GET("", h.ListOwn)
		walks.GET("/community", h.ListCommunity)
		walks.GET("/:id", h.Get)
		walks.POST("/:id/publish", h.Publish)
		walks.POST("/:id/join", h.Join)
		walks.DELETE("/:id", h.Delete)
	}
}

// Save handles POST /api/v1/walks.
func (h *WalkHandler) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SaveWalkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SaveWalk(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListOwn handles GET /api/v1/walks.
func (h *WalkHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListOwnWalks(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListCommunity handles GET /api/v1/walks/community.
func (h *WalkHandler) ListCommunity(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.service.ListCommunityWalks(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// Get handles GET /api/v1/walks/:id.
func (h *WalkHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	walkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid walk ID")
		return
	}

	result, err := h.service.GetWalk(c.Request.Context(), userID, walkID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetShared handles GET /api/v1/walks/shared/:shareID.
func (h *WalkHandler) GetShared(c *gin.Context) {
	result, err := h.service.GetSharedWalk(c.Request.Context(), c.Param("shareID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Publish handles POST /api/v1/walks/:id/publish.
func (h *WalkHandler) Publish(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	walkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid walk ID")
		return
	}

	result, err := h.service.PublishWalk(c.Request.Context(), userID, walkID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Join handles POST /api/v1/walks/:id/join.
func (h *WalkHandler) Join(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	walkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid walk ID")
		return
	}

	result, err := h.service.JoinWalk(c.Request.Context(), userID, walkID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete handles DELETE /api/v1/walks/:id.
func (h *WalkHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	walkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid walk ID")
		return
	}

	if err := h.service.DeleteWalk(c.Request.Context(), userID, walkID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
