package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/conversation"
	"messenger-service/internal/media"
	"messenger-service/internal/models"
	"messenger-service/internal/telemetry"
)

// MessageHandler exposes the message lifecycle endpoints.
type MessageHandler struct {
	engine  *conversation.Engine
	media   media.Store
	emitter *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(engine *conversation.Engine, mediaStore media.Store, emitter *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{engine: engine, media: mediaStore, emitter: emitter}
}

// Send stores a new text or image message and pushes it to the recipient.
// Accepts JSON or multipart form data with an optional "image" file.
func (h *MessageHandler) Send(c *gin.Context) {
	params := conversation.SendParams{MessageType: models.TypeText}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		params.ToUserID = c.PostForm("to_user_id")
		params.Text = c.PostForm("text")
		if replyTo := c.PostForm("reply_to"); replyTo != "" {
			params.ReplyTo = &replyTo
		}

		if file, err := c.FormFile("image"); err == nil {
			src, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unreadable upload"})
				return
			}
			defer src.Close()

			url, err := h.media.Save(file.Filename, src)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to store media"})
				return
			}
			params.MediaURL = url
			params.MessageType = models.TypeImage
		}
	} else {
		var req struct {
			ToUserID string  `json:"to_user_id"`
			Text     string  `json:"text"`
			ReplyTo  *string `json:"reply_to"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		params.ToUserID = req.ToUserID
		params.Text = req.Text
		params.ReplyTo = req.ReplyTo
	}

	msg, err := h.engine.Send(c.Request.Context(), actorID(c), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// SendVoice stores an audio message from a multipart upload.
func (h *MessageHandler) SendVoice(c *gin.Context) {
	toUserID := c.PostForm("to_user_id")

	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no audio"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unreadable upload"})
		return
	}
	defer src.Close()

	url, err := h.media.Save(file.Filename, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to store media"})
		return
	}

	msg, err := h.engine.Send(c.Request.Context(), actorID(c), conversation.SendParams{
		ToUserID:    toUserID,
		MessageType: models.TypeAudio,
		MediaURL:    url,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// GetConversation returns the conversation with a peer and marks the peer's
// messages as seen.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	msgs, err := h.engine.FetchConversation(c.Request.Context(), actorID(c), req.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}

// Recent returns messages addressed to the caller, newest first.
func (h *MessageHandler) Recent(c *gin.Context) {
	msgs, err := h.engine.RecentMessages(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}

// React sets or clears the caller's reaction on a message.
func (h *MessageHandler) React(c *gin.Context) {
	var req struct {
		MessageID string `json:"messageId" binding:"required"`
		Type      string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	msg, err := h.engine.React(c.Request.Context(), actorID(c), req.MessageID, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// Revoke redacts a message for everyone. Sender only.
func (h *MessageHandler) Revoke(c *gin.Context) {
	var req struct {
		MessageID string `json:"messageId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	msg, err := h.engine.Revoke(c.Request.Context(), actorID(c), req.MessageID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("message %s revoked", msg.ID), requestIDFromContext(c), actorIDPtr(c))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// DeleteForMe hides a message from the caller's view only.
func (h *MessageHandler) DeleteForMe(c *gin.Context) {
	var req struct {
		MessageID string `json:"messageId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.engine.HideMessage(c.Request.Context(), actorID(c), req.MessageID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteConversationForMe hides a whole conversation from the caller's view.
func (h *MessageHandler) DeleteConversationForMe(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.engine.HideConversation(c.Request.Context(), actorID(c), req.ToUserID); err != nil {
		respondError(c, err)
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("conversation with %s hidden", req.ToUserID), requestIDFromContext(c), actorIDPtr(c))

	c.JSON(http.StatusOK, gin.H{"success": true})
}
