package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/signaling"
)

// CallHandler exposes the call-signaling relay endpoints. Every handler
// reports success regardless of whether the callee was reachable: a missed
// signal surfaces as a call timeout on the client, never as a request error.
type CallHandler struct {
	relay *signaling.Relay
}

// NewCallHandler builds a CallHandler.
func NewCallHandler(relay *signaling.Relay) *CallHandler {
	return &CallHandler{relay: relay}
}

// Offer relays a call offer to the callee.
func (h *CallHandler) Offer(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id" binding:"required"`
		SDP      string `json:"sdp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.relay.Offer(actorID(c), req.ToUserID, req.SDP)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Answer relays a call answer to the caller.
func (h *CallHandler) Answer(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id" binding:"required"`
		SDP      string `json:"sdp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.relay.Answer(actorID(c), req.ToUserID, req.SDP)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Ice relays an ICE candidate to the peer.
func (h *CallHandler) Ice(c *gin.Context) {
	var req struct {
		ToUserID  string `json:"to_user_id" binding:"required"`
		Candidate string `json:"candidate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.relay.IceCandidate(actorID(c), req.ToUserID, req.Candidate)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
