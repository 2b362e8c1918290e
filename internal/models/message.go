package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
)

// Message content types.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeAudio = "audio"
	TypeVideo = "video"
)

// RevokedText replaces the content of a revoked message.
const RevokedText = "This message was revoked"

// Reaction is a single user's reaction on a message.
type Reaction struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

// ReactionSet holds at most one reaction per user id. It is stored as a
// JSONB object keyed by user id so the database can replace a single user's
// entry atomically, and marshals to the API as an array of reactions.
type ReactionSet map[string]string

// Value implements driver.Valuer.
func (s ReactionSet) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(s))
}

// Scan implements sql.Scanner.
func (s *ReactionSet) Scan(src interface{}) error {
	if src == nil {
		*s = ReactionSet{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported reactions type %T", src)
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode reactions: %w", err)
	}
	*s = m
	return nil
}

// MarshalJSON renders the set as a stable array of reactions.
func (s ReactionSet) MarshalJSON() ([]byte, error) {
	reactions := make([]Reaction, 0, len(s))
	for userID, typ := range s {
		reactions = append(reactions, Reaction{UserID: userID, Type: typ})
	}
	sort.Slice(reactions, func(i, j int) bool { return reactions[i].UserID < reactions[j].UserID })
	return json.Marshal(reactions)
}

// UnmarshalJSON accepts the array form produced by MarshalJSON.
func (s *ReactionSet) UnmarshalJSON(data []byte) error {
	var reactions []Reaction
	if err := json.Unmarshal(data, &reactions); err != nil {
		return err
	}
	set := make(ReactionSet, len(reactions))
	for _, r := range reactions {
		set[r.UserID] = r.Type
	}
	*s = set
	return nil
}

// Message is a directed message between two users. Messages are never
// physically deleted: "delete" means per-user hiding or content revocation,
// both of which mutate the record in place.
type Message struct {
	ID          string         `db:"id" json:"id"`
	FromUserID  string         `db:"from_user_id" json:"from_user_id"`
	ToUserID    string         `db:"to_user_id" json:"to_user_id"`
	Text        string         `db:"text" json:"text"`
	MessageType string         `db:"message_type" json:"message_type"`
	MediaURL    string         `db:"media_url" json:"media_url"`
	Seen        bool           `db:"seen" json:"seen"`
	Reactions   ReactionSet    `db:"reactions" json:"reactions"`
	HiddenFor   pq.StringArray `db:"hidden_for" json:"hidden_for"`
	Revoked     bool           `db:"revoked" json:"revoked"`
	ReplyTo     *string        `db:"reply_to" json:"reply_to,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// HiddenForUser reports whether the message is hidden from userID's view.
func (m Message) HiddenForUser(userID string) bool {
	for _, id := range m.HiddenFor {
		if id == userID {
			return true
		}
	}
	return false
}
