package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wanderwalks/service-walks/internal/domain"
	"github.com/wanderwalks/service-walks/internal/domain/route"
)

// envelope is the uniform JSON response body.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: message})
}

// Error maps a domain error to its HTTP status and writes the response.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, route.ErrNoCandidates):
		c.JSON(http.StatusUnprocessableEntity, envelope{
			Success: false,
			Error:   "no points of interest found; widen your filters or increase the duration",
		})
		return
	case errors.Is(err, route.ErrSourceUnavailable):
		c.JSON(http.StatusServiceUnavailable, envelope{
			Success: false,
			Error:   "point of interest search is temporarily unavailable, try again shortly",
		})
		return
	case errors.Is(err, route.ErrLocationUnavailable):
		c.JSON(http.StatusBadRequest, envelope{
			Success: false,
			Error:   "could not determine a starting location",
		})
		return
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		c.JSON(http.StatusBadRequest, envelope{Success: false, Error: err.Error()})
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, envelope{Success: false, Error: err.Error()})
	case domain.KindConflict:
		c.JSON(http.StatusConflict, envelope{Success: false, Error: err.Error()})
	case domain.KindForbidden:
		c.JSON(http.StatusForbidden, envelope{Success: false, Error: err.Error()})
	case domain.KindInvalidState:
		c.JSON(http.StatusConflict, envelope{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Error: "internal server error"})
	}
}
