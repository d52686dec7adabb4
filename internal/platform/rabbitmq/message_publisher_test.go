package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casedesk/internal/model"
)

func TestEncodeMessageEvent(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	raw, err := EncodeMessageEvent(model.ChatMessage{ID: "01J", Sender: "User", Content: "hello", Timestamp: ts})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, EventMessageCreated, decoded["event"])

	msg, ok := decoded["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "01J", msg["id"])
	assert.Equal(t, "User", msg["sender"])
	assert.Equal(t, "hello", msg["content"])
	assert.Equal(t, "2025-03-04T05:06:07Z", msg["timestamp"])
}
