package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/moderation"
	"github.com/vibecoder/backend/internal/repository"
)

// ErrorResponse sends a standardized error response and logs at caller if needed
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondError maps domain and persistence errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrContentBlocked):
		ErrorResponse(c, http.StatusUnprocessableEntity, moderation.ContentBlockedMessage)
	case errors.Is(err, moderation.ErrValidation):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// currentUserID returns the authenticated user set by AuthMiddleware
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// uuidParam parses a path parameter, writing a 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
