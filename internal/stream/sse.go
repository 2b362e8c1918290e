package stream

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
)

// sseChannel writes server-sent-event frames to a client response. Pushes
// from the registry and keepalives from the subscription loop share the
// writer, so every write goes through the mutex.
type sseChannel struct {
	mu sync.Mutex
	w  gin.ResponseWriter
}

func (c *sseChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	c.w.Flush()
	return nil
}

func (c *sseChannel) comment(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, ": %s\n\n", text); err != nil {
		return err
	}
	c.w.Flush()
	return nil
}

func (c *sseChannel) Transport() string { return "sse" }

// SSEHandler serves the long-lived event-stream subscription.
type SSEHandler struct {
	registry  *Registry
	keepalive time.Duration
	jwtSecret string
}

// NewSSEHandler constructs an SSEHandler.
func NewSSEHandler(registry *Registry, keepalive time.Duration, jwtSecret string) *SSEHandler {
	return &SSEHandler{registry: registry, keepalive: keepalive, jwtSecret: jwtSecret}
}

// Handle registers the subscriber's live channel and holds the connection
// open until the client goes away. A new subscription for the same user id
// silently replaces the previous one. The token may arrive as a query
// parameter because EventSource clients cannot set headers.
func (h *SSEHandler) Handle(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing user id"})
		return
	}

	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}
	authID, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil || authID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	ctx, span := otel.Tracer("messenger-service/stream").Start(c.Request.Context(), "sse.subscribe")
	defer span.End()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	ch := &sseChannel{w: c.Writer}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	h.registry.Register(userID, ch)
	observability.IncStreamActive("sse")
	publishStreamEvent(ctx, "sse", "stream_connect", "", info)

	var closeReason string
	defer func() {
		h.registry.Unregister(userID, ch)
		observability.DecStreamActive("sse")
		publishStreamEvent(context.Background(), "sse", "stream_disconnect", closeReason, info)
	}()

	_ = ch.comment("connected")

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			closeReason = "client closed"
			return
		case <-ticker.C:
			if err := ch.comment("keepalive"); err != nil {
				closeReason = err.Error()
				return
			}
		}
	}
}
