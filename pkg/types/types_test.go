package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EventType
		wantErr bool
	}{
		{"defaults to created", `{"message":{"id":"1","content":"hi"}}`, EventCreated, false},
		{"updated", `{"type":"updated","message":{"id":"1"}}`, EventUpdated, false},
		{"unknown type", `{"type":"deleted","message":{"id":"1"}}`, "", true},
		{"malformed", `{"type":`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Type)
			assert.Equal(t, "1", ev.Message.ID)
		})
	}
}

func TestMessageEvent_IsEdit(t *testing.T) {
	ts := "2024-01-01T00:00:00Z"

	assert.False(t, MessageEvent{Type: EventCreated, Message: &Message{}}.IsEdit())
	assert.True(t, MessageEvent{Type: EventUpdated}.IsEdit())
	assert.True(t, MessageEvent{Type: EventCreated, Message: &Message{EditedTimestamp: &ts}}.IsEdit())
}

func TestMessage_IsDirect(t *testing.T) {
	assert.True(t, (&Message{}).IsDirect())
	assert.True(t, (&Message{GuildID: DirectMessageGuild}).IsDirect())
	assert.False(t, (&Message{GuildID: "1"}).IsDirect())
}

func TestAuthor_Tag(t *testing.T) {
	assert.Equal(t, "alice#0001", (&Author{Username: "alice", Discriminator: "0001"}).Tag())
}
