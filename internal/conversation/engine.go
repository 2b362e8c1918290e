package conversation

import (
	"context"
	"errors"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

var (
	ErrMissingRecipient = errors.New("recipient is required")
	ErrEmptyMessage     = errors.New("message has no content")
)

// Pusher delivers events to a user's live channel, best effort.
type Pusher interface {
	Push(userID string, event any) bool
}

// Engine owns the business rules of the message lifecycle: it performs the
// store mutation first and emits fan-out afterwards, so a delivery failure
// can never alter the result already committed for the caller.
type Engine struct {
	repo   repositories.MessageRepository
	pusher Pusher
}

// NewEngine constructs an Engine.
func NewEngine(repo repositories.MessageRepository, pusher Pusher) *Engine {
	return &Engine{repo: repo, pusher: pusher}
}

// SendParams carries the content of an outgoing message.
type SendParams struct {
	ToUserID    string
	Text        string
	MessageType string
	MediaURL    string
	ReplyTo     *string
}

// Send stores a new message and pushes it to the recipient's live channel.
// The sender gets the message back synchronously and receives no echo event.
func (e *Engine) Send(ctx context.Context, fromUserID string, params SendParams) (models.Message, error) {
	if params.ToUserID == "" {
		return models.Message{}, ErrMissingRecipient
	}
	if params.Text == "" && params.MediaURL == "" {
		return models.Message{}, ErrEmptyMessage
	}

	msg, err := e.repo.CreateMessage(ctx, repositories.CreateMessageParams{
		FromUserID:  fromUserID,
		ToUserID:    params.ToUserID,
		Text:        params.Text,
		MessageType: params.MessageType,
		MediaURL:    params.MediaURL,
		ReplyTo:     params.ReplyTo,
	})
	if err != nil {
		return models.Message{}, err
	}

	if msg.ToUserID != fromUserID {
		e.pusher.Push(msg.ToUserID, msg)
	}
	return msg, nil
}

// FetchConversation returns the viewer's visible messages with the peer,
// marks the peer's messages to the viewer as seen, and notifies the peer
// when anything was newly seen.
func (e *Engine) FetchConversation(ctx context.Context, viewerID, peerID string) ([]models.Message, error) {
	if peerID == "" {
		return nil, ErrMissingRecipient
	}

	msgs, err := e.repo.GetConversation(ctx, viewerID, peerID, viewerID)
	if err != nil {
		return nil, err
	}

	count, err := e.repo.MarkSeen(ctx, peerID, viewerID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		e.pusher.Push(peerID, models.SeenEvent{Event: models.EventSeen, PeerID: viewerID})
	}
	return msgs, nil
}

// RecentMessages returns the viewer's inbox, newest first.
func (e *Engine) RecentMessages(ctx context.Context, userID string) ([]models.Message, error) {
	return e.repo.GetRecentMessages(ctx, userID)
}

// React replaces the actor's reaction on a message, or clears it when the
// type is empty, and pushes the updated message to both participants.
func (e *Engine) React(ctx context.Context, actorID, messageID, reactionType string) (models.Message, error) {
	msg, err := e.repo.UpsertReaction(ctx, messageID, actorID, reactionType)
	if err != nil {
		return models.Message{}, err
	}

	event := models.ReactionEvent{Event: models.EventReaction, Message: msg}
	e.pusher.Push(msg.FromUserID, event)
	if msg.ToUserID != msg.FromUserID {
		e.pusher.Push(msg.ToUserID, event)
	}
	return msg, nil
}

// Revoke redacts a message (sender only) and notifies the recipient.
func (e *Engine) Revoke(ctx context.Context, actorID, messageID string) (models.Message, error) {
	msg, err := e.repo.RevokeMessage(ctx, messageID, actorID)
	if err != nil {
		return models.Message{}, err
	}

	if msg.ToUserID != actorID {
		e.pusher.Push(msg.ToUserID, models.RevokedEvent{Event: models.EventRevoked, MessageID: msg.ID})
	}
	return msg, nil
}

// HideMessage suppresses one message from the actor's view. No fan-out: the
// peer's view is unaffected.
func (e *Engine) HideMessage(ctx context.Context, actorID, messageID string) error {
	return e.repo.HideMessageForUser(ctx, messageID, actorID)
}

// HideConversation suppresses the whole conversation with a peer from the
// actor's view.
func (e *Engine) HideConversation(ctx context.Context, actorID, peerID string) error {
	if peerID == "" {
		return ErrMissingRecipient
	}
	return e.repo.HideConversationForUser(ctx, actorID, peerID, actorID)
}
