package stream

import (
	"encoding/json"
	"hash/fnv"
	"log"
	"sync"

	"messenger-service/internal/observability"
)

// Channel is a single user's live outbound stream.
type Channel interface {
	// Send writes one event frame. Implementations must be safe for
	// concurrent use with any other writes they perform themselves.
	Send(payload []byte) error
	// Transport names the underlying transport for metrics.
	Transport() string
}

const bucketCount = 32

type bucket struct {
	mu    sync.Mutex
	conns map[string]Channel
}

// Registry holds at most one live channel per user id and fans events out to
// them. Delivery is best-effort and at-most-once: a push to an absent or
// broken channel is dropped, never queued or retried.
type Registry struct {
	buckets [bucketCount]*bucket
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.buckets {
		r.buckets[i] = &bucket{conns: make(map[string]Channel)}
	}
	return r
}

func (r *Registry) bucketFor(userID string) *bucket {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return r.buckets[h.Sum32()%bucketCount]
}

// Register installs ch as the live channel for userID, replacing any prior
// channel. The displaced channel is not closed here; its owner detects its
// own closure through its read loop or a failed write.
func (r *Registry) Register(userID string, ch Channel) {
	b := r.bucketFor(userID)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[userID] = ch
}

// Unregister removes the entry only while ch is still the registered channel,
// so a late unregister from a replaced connection cannot evict a newer one.
func (r *Registry) Unregister(userID string, ch Channel) {
	b := r.bucketFor(userID)
	b.mu.Lock()
	defer b.mu.Unlock()
	if current, ok := b.conns[userID]; ok && current == ch {
		delete(b.conns, userID)
	}
}

// Connected reports whether a live channel is registered for userID.
func (r *Registry) Connected(userID string) bool {
	b := r.bucketFor(userID)
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conns[userID]
	return ok
}

// Push writes one event to the user's channel and reports whether delivery
// happened. A write failure is treated as a dropped connection: the channel
// is unregistered and the event is lost. The bucket lock is held across the
// write so a push cannot race a replacement of the same user's channel.
func (r *Registry) Push(userID string, event any) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("stream: marshal event for user %s: %v", userID, err)
		observability.IncStreamPush("failed")
		return false
	}

	b := r.bucketFor(userID)
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.conns[userID]
	if !ok {
		observability.IncStreamPush("offline")
		return false
	}
	if err := ch.Send(payload); err != nil {
		log.Printf("stream: write error for user %s: %v", userID, err)
		delete(b.conns, userID)
		observability.IncStreamPush("failed")
		observability.IncStreamEvent(ch.Transport(), "stream_error")
		return false
	}
	observability.IncStreamPush("delivered")
	return true
}
