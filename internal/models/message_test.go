package models

import (
	"encoding/json"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionSetMarshalsAsArray(t *testing.T) {
	set := ReactionSet{"B": "😂", "A": "❤️"}

	data, err := json.Marshal(set)

	require.NoError(t, err)
	assert.JSONEq(t, `[{"user_id":"A","type":"❤️"},{"user_id":"B","type":"😂"}]`, string(data))
}

func TestReactionSetScanFromJSONB(t *testing.T) {
	var set ReactionSet
	require.NoError(t, set.Scan([]byte(`{"B":"👍"}`)))
	assert.Equal(t, "👍", set["B"])

	require.NoError(t, set.Scan(nil))
	assert.Empty(t, set)
}

func TestReactionSetRoundTrip(t *testing.T) {
	original := ReactionSet{"A": "❤️"}
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ReactionSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestHiddenForUser(t *testing.T) {
	msg := Message{HiddenFor: pq.StringArray{"A"}}

	assert.True(t, msg.HiddenForUser("A"))
	assert.False(t, msg.HiddenForUser("B"))
}
