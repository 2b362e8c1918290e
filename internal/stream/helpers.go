package stream

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"messenger-service/internal/observability"
)

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

const streamRoutingKey = "stream_events.messages"

func publishStreamEvent(ctx context.Context, transport, event, reason string, info ConnInfo) {
	observability.IncStreamEvent(transport, event)
	_ = observability.PublishEvent(ctx, streamRoutingKey, observability.EventEnvelope{
		EventType: "stream_events",
		EventName: event,
		Payload: map[string]interface{}{
			"stream": map[string]interface{}{
				"transport":   transport,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
