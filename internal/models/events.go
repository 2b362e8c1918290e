package models

// Stream event discriminators. A frame without an "event" field is a new
// message whose payload is the Message entity itself.
const (
	EventSeen       = "seen"
	EventReaction   = "reaction"
	EventRevoked    = "revoked"
	EventCallOffer  = "call-offer"
	EventCallAnswer = "call-answer"
	EventCallIce    = "call-ice"
)

// SeenEvent tells a sender that a peer has read their messages.
type SeenEvent struct {
	Event  string `json:"event"`
	PeerID string `json:"peerId"`
}

// ReactionEvent carries the updated message after a reaction change.
type ReactionEvent struct {
	Event   string  `json:"event"`
	Message Message `json:"message"`
}

// RevokedEvent tells the peer that a message was revoked by its sender.
type RevokedEvent struct {
	Event     string `json:"event"`
	MessageID string `json:"messageId"`
}

// CallEvent relays WebRTC signaling between two users.
type CallEvent struct {
	Event     string `json:"event"`
	From      string `json:"from"`
	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"`
}
