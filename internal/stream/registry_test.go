package stream

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (c *fakeChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, payload)
	return nil
}

func (c *fakeChannel) Transport() string { return "fake" }

func (c *fakeChannel) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.frames...)
}

func TestPushWithoutConnection(t *testing.T) {
	registry := NewRegistry()

	delivered := registry.Push("alice", map[string]string{"text": "hello"})

	assert.False(t, delivered)
}

func TestPushDeliversInOrder(t *testing.T) {
	registry := NewRegistry()
	ch := &fakeChannel{}
	registry.Register("alice", ch)

	require.True(t, registry.Push("alice", map[string]string{"text": "one"}))
	require.True(t, registry.Push("alice", map[string]string{"text": "two"}))

	frames := ch.sent()
	require.Len(t, frames, 2)
	assert.JSONEq(t, `{"text":"one"}`, string(frames[0]))
	assert.JSONEq(t, `{"text":"two"}`, string(frames[1]))
}

func TestRegisterReplacesPriorChannel(t *testing.T) {
	registry := NewRegistry()
	first := &fakeChannel{}
	second := &fakeChannel{}

	registry.Register("alice", first)
	registry.Register("alice", second)

	require.True(t, registry.Push("alice", map[string]string{"n": "1"}))
	assert.Empty(t, first.sent())
	assert.Len(t, second.sent(), 1)
}

func TestStaleUnregisterKeepsNewerChannel(t *testing.T) {
	registry := NewRegistry()
	stale := &fakeChannel{}
	current := &fakeChannel{}

	registry.Register("alice", stale)
	registry.Register("alice", current)
	registry.Unregister("alice", stale)

	assert.True(t, registry.Connected("alice"))
	require.True(t, registry.Push("alice", map[string]string{"n": "1"}))
	assert.Len(t, current.sent(), 1)
}

func TestUnregisterRemovesOwnChannel(t *testing.T) {
	registry := NewRegistry()
	ch := &fakeChannel{}

	registry.Register("alice", ch)
	registry.Unregister("alice", ch)

	assert.False(t, registry.Connected("alice"))
	assert.False(t, registry.Push("alice", map[string]string{"n": "1"}))
}

func TestWriteFailureDropsConnection(t *testing.T) {
	registry := NewRegistry()
	ch := &fakeChannel{err: errors.New("broken pipe")}
	registry.Register("alice", ch)

	assert.False(t, registry.Push("alice", map[string]string{"n": "1"}))
	assert.False(t, registry.Connected("alice"))
}

func TestNoReplayAfterReconnect(t *testing.T) {
	registry := NewRegistry()

	require.False(t, registry.Push("alice", map[string]string{"text": "missed"}))

	ch := &fakeChannel{}
	registry.Register("alice", ch)

	assert.Empty(t, ch.sent())
}

func TestConcurrentPushesToDifferentUsers(t *testing.T) {
	registry := NewRegistry()
	users := []string{"alice", "bob", "carol", "dave"}
	channels := make(map[string]*fakeChannel, len(users))
	for _, u := range users {
		ch := &fakeChannel{}
		channels[u] = ch
		registry.Register(u, ch)
	}

	const perUser = 50
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			for i := 0; i < perUser; i++ {
				registry.Push(userID, map[string]int{"seq": i})
			}
		}(u)
	}
	wg.Wait()

	for _, u := range users {
		assert.Len(t, channels[u].sent(), perUser)
	}
}
