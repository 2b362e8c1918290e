package signaling

import (
	"messenger-service/internal/models"
)

// Pusher delivers events to a user's live channel, best effort.
type Pusher interface {
	Push(userID string, event any) bool
}

// Relay forwards WebRTC call negotiation payloads between two users over
// their live channels. It keeps no call state and always reports success:
// an offline callee is discovered by call timeout on the client, not here.
type Relay struct {
	pusher Pusher
}

// NewRelay constructs a Relay.
func NewRelay(pusher Pusher) *Relay {
	return &Relay{pusher: pusher}
}

// Offer relays a session description offer to the callee.
func (r *Relay) Offer(fromUserID, toUserID, sdp string) {
	r.pusher.Push(toUserID, models.CallEvent{Event: models.EventCallOffer, From: fromUserID, SDP: sdp})
}

// Answer relays a session description answer to the caller.
func (r *Relay) Answer(fromUserID, toUserID, sdp string) {
	r.pusher.Push(toUserID, models.CallEvent{Event: models.EventCallAnswer, From: fromUserID, SDP: sdp})
}

// IceCandidate relays an ICE candidate to the peer.
func (r *Relay) IceCandidate(fromUserID, toUserID, candidate string) {
	r.pusher.Push(toUserID, models.CallEvent{Event: models.EventCallIce, From: fromUserID, Candidate: candidate})
}
