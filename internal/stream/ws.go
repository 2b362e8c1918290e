package stream

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
)

// wsChannel adapts a websocket connection to the registry channel contract.
type wsChannel struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsChannel) Transport() string { return "ws" }

// WSHandler serves the websocket subscription.
type WSHandler struct {
	registry  *Registry
	jwtSecret string
}

// NewWSHandler constructs a WSHandler.
func NewWSHandler(registry *Registry, jwtSecret string) *WSHandler {
	return &WSHandler{registry: registry, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers it as the caller's live
// channel. The read loop only watches for the client going away; the client
// never sends application frames on this socket.
func (h *WSHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messenger-service/stream").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}

	userID, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ch := &wsChannel{conn: conn}
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
	observability.IncStreamActive("ws")
	publishStreamEvent(ctx, "ws", "stream_connect", "", info)

	go func() {
		var closeReason string
		defer func() {
			h.registry.Unregister(userID, ch)
			observability.DecStreamActive("ws")
			publishStreamEvent(context.Background(), "ws", "stream_disconnect", closeReason, info)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishStreamEvent(context.Background(), "ws", "stream_error", closeReason, info)
				}
				return
			}
		}
	}()
}
