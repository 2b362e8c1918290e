package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"messenger-service/internal/conversation"
	"messenger-service/internal/middleware"
	"messenger-service/internal/repositories"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func actorID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

func actorIDPtr(c *gin.Context) *string {
	if id := actorID(c); id != "" {
		return &id
	}
	return nil
}

// respondError maps engine and repository errors to a uniform failure body.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, conversation.ErrMissingRecipient), errors.Is(err, conversation.ErrEmptyMessage):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, repositories.ErrMessageNotFound):
		status = http.StatusNotFound
		message = "message not found"
	case errors.Is(err, repositories.ErrNotMessageSender):
		status = http.StatusForbidden
		message = "not allowed"
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}
