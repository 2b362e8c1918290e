package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotMessageSender = errors.New("only the sender can revoke a message")
)

const messageColumns = `id, from_user_id, to_user_id, text, message_type, media_url, seen, reactions, hidden_for, revoked, reply_to, created_at`

// CreateMessageParams carries the content of a new message.
type CreateMessageParams struct {
	FromUserID  string
	ToUserID    string
	Text        string
	MessageType string
	MediaURL    string
	ReplyTo     *string
}

// MessageRepository defines the lifecycle operations on stored messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error)
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
	GetConversation(ctx context.Context, userA, userB, viewer string) ([]models.Message, error)
	GetRecentMessages(ctx context.Context, userID string) ([]models.Message, error)
	MarkSeen(ctx context.Context, fromUserID, toUserID string) (int64, error)
	UpsertReaction(ctx context.Context, messageID, userID, reactionType string) (models.Message, error)
	RevokeMessage(ctx context.Context, messageID, requesterID string) (models.Message, error)
	HideMessageForUser(ctx context.Context, messageID, userID string) error
	HideConversationForUser(ctx context.Context, userA, userB, userID string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a new directed message.
func (r *MessageRepo) CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error) {
	messageType := params.MessageType
	if messageType == "" {
		messageType = models.TypeText
	}

	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO messages (id, from_user_id, to_user_id, text, message_type, media_url, reply_to)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+messageColumns,
		uuid.NewString(), params.FromUserID, params.ToUserID, params.Text, messageType, params.MediaURL, params.ReplyTo)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// GetConversation returns all messages between two users that are visible to
// the viewer, oldest first. Reply references are returned verbatim even when
// the referenced message is hidden or revoked for the viewer.
func (r *MessageRepo) GetConversation(ctx context.Context, userA, userB, viewer string) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE ((from_user_id=$1 AND to_user_id=$2) OR (from_user_id=$2 AND to_user_id=$1))
        AND NOT ($3 = ANY(hidden_for))
        ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userA, userB, viewer)
	return msgs, err
}

// GetRecentMessages returns messages addressed to the user, newest first.
func (r *MessageRepo) GetRecentMessages(ctx context.Context, userID string) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE to_user_id=$1 AND NOT ($1 = ANY(hidden_for))
        ORDER BY created_at DESC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID)
	return msgs, err
}

// MarkSeen flips seen on every unseen message from one user to another and
// returns the number of messages updated. Direction matters: only messages
// addressed to toUserID are touched.
func (r *MessageRepo) MarkSeen(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET seen = TRUE WHERE from_user_id=$1 AND to_user_id=$2 AND seen = FALSE`,
		fromUserID, toUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertReaction replaces the user's reaction on a message, or clears it when
// reactionType is empty. The keyed JSONB update is a single statement, so
// concurrent reactions from different users cannot overwrite each other.
func (r *MessageRepo) UpsertReaction(ctx context.Context, messageID, userID, reactionType string) (models.Message, error) {
	var (
		msg models.Message
		err error
	)
	if reactionType == "" {
		err = r.db.GetContext(ctx, &msg,
			`UPDATE messages SET reactions = reactions - $2::text WHERE id=$1 RETURNING `+messageColumns,
			messageID, userID)
	} else {
		err = r.db.GetContext(ctx, &msg,
			`UPDATE messages SET reactions = jsonb_set(reactions, ARRAY[$2], to_jsonb($3::text), true)
             WHERE id=$1 RETURNING `+messageColumns,
			messageID, userID, reactionType)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// RevokeMessage redacts a message's content. Only the sender may revoke;
// revoking an already-revoked message is a no-op returning the same state.
func (r *MessageRepo) RevokeMessage(ctx context.Context, messageID, requesterID string) (models.Message, error) {
	msg, err := r.GetMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if msg.FromUserID != requesterID {
		return models.Message{}, ErrNotMessageSender
	}
	if msg.Revoked {
		return msg, nil
	}

	err = r.db.GetContext(ctx, &msg,
		`UPDATE messages SET revoked = TRUE, text=$2, media_url='', message_type=$3
         WHERE id=$1 RETURNING `+messageColumns,
		messageID, models.RevokedText, models.TypeText)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// HideMessageForUser makes a message invisible to one user. Idempotent.
func (r *MessageRepo) HideMessageForUser(ctx context.Context, messageID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages
         SET hidden_for = CASE WHEN $2 = ANY(hidden_for) THEN hidden_for ELSE array_append(hidden_for, $2) END
         WHERE id=$1`,
		messageID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// HideConversationForUser hides every message between a pair of users from
// one of them. Idempotent.
func (r *MessageRepo) HideConversationForUser(ctx context.Context, userA, userB, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages
         SET hidden_for = CASE WHEN $3 = ANY(hidden_for) THEN hidden_for ELSE array_append(hidden_for, $3) END
         WHERE (from_user_id=$1 AND to_user_id=$2) OR (from_user_id=$2 AND to_user_id=$1)`,
		userA, userB, userID)
	return err
}
