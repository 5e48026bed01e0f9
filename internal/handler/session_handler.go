package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wanderwalks/service-walks/internal/application"
	"github.com/wanderwalks/service-walks/internal/domain/session"
	"github.com/wanderwalks/service-walks/internal/platform/middleware"
	"github.com/wanderwalks/service-walks/internal/platform/response"
)

// SessionHandler handles HTTP requests for live walk sessions.
type SessionHandler struct {
	service *application.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *application.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// RegisterRoutes registers all session routes on the given router group.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/api/v1/sessions")
	sessions.Use(middleware.IdentityMiddleware())
	{
		sessions.POST("", h.Start)
		sessions.GET("/:id", h.Get)
		sessions.POST("/:id/position", h.Position)
		sessions.POST("/:id/signal-lost", h.SignalLost)
		sessions.POST("/:id/next", h.Next)
		sessions.POST("/:id/previous", h.Previous)
		sessions.POST("/:id/jump", h.Jump)
		sessions.POST("/:id/finish", h.Finish)
		sessions.GET("/:id/events", h.Events)
		sessions.DELETE("/:id", h.End)
	}
}

// Start handles POST /api/v1/sessions.
func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Start(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Get handles GET /api/v1/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	result, err := h.service.Get(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Position handles POST /api/v1/sessions/:id/position.
func (h *SessionHandler) Position(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	var req application.PositionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.PushPosition(userID, sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SignalLost handles POST /api/v1/sessions/:id/signal-lost. The device calls
// this when position acquisition fails; watchers see a transient status.
func (h *SessionHandler) SignalLost(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	if err := h.service.ReportSignalLost(userID, sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Next handles POST /api/v1/sessions/:id/next.
func (h *SessionHandler) Next(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	result, err := h.service.Next(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Previous handles POST /api/v1/sessions/:id/previous.
func (h *SessionHandler) Previous(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	result, err := h.service.Previous(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Jump handles POST /api/v1/sessions/:id/jump.
func (h *SessionHandler) Jump(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	var req application.JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.JumpTo(userID, sessionID, *req.StopIndex)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Finish handles POST /api/v1/sessions/:id/finish.
func (h *SessionHandler) Finish(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	result, err := h.service.Finish(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// End handles DELETE /api/v1/sessions/:id.
func (h *SessionHandler) End(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	if err := h.service.End(c.Request.Context(), userID, sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Events handles GET /api/v1/sessions/:id/events, streaming live session
// events as server-sent events until the session terminates or the client
// disconnects.
func (h *SessionHandler) Events(c *gin.Context) {
	userID, sessionID, ok := h.identify(c)
	if !ok {
		return
	}

	events, cancel, err := h.service.Subscribe(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case evt, open := <-events:
			if !open {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return evt.Type != session.EventFinished && evt.Type != session.EventEnded
		case <-clientGone:
			return false
		}
	})
}

// identify extracts the caller's user ID and the session ID from the request.
func (h *SessionHandler) identify(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}
