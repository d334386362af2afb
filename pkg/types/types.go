// Package types contains shared data structures used across the application.
package types

import (
	"encoding/json"
	"fmt"
)

// DirectMessageGuild is the pseudo guild id some clients send for direct messages.
const DirectMessageGuild = "@me"

// MessageStateSending marks messages still in flight from the local client.
const MessageStateSending = "SENDING"

// EventType identifies the kind of inbound message event
type EventType string

const (
	// EventCreated is delivered when a message is first seen
	EventCreated EventType = "created"
	// EventUpdated is delivered when a message is edited
	EventUpdated EventType = "updated"
)

// MessageEvent is a single inbound message event
type MessageEvent struct {
	Type    EventType `json:"type"`
	Message *Message  `json:"message"`
}

// IsEdit reports whether the event describes an edit of an existing message.
// Some sources deliver updates as plain events carrying an edit timestamp.
func (e MessageEvent) IsEdit() bool {
	if e.Type == EventUpdated {
		return true
	}
	return e.Message != nil && e.Message.EditedTimestamp != nil
}

// Author is the user who sent a message
type Author struct {
	ID            string `json:"id" yaml:"id"`
	Username      string `json:"username" yaml:"username"`
	Discriminator string `json:"discriminator" yaml:"discriminator"`
	Avatar        string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Bot           bool   `json:"bot,omitempty" yaml:"bot,omitempty"`
}

// Tag returns the username#discriminator form
func (a Author) Tag() string {
	return a.Username + "#" + a.Discriminator
}

// Mention is a user mentioned in a message
type Mention struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

// Message is a chat message as delivered by the event source
type Message struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	Author          *Author   `json:"author"`
	GuildID         string    `json:"guild_id,omitempty"`
	Guild           *Guild    `json:"guild,omitempty"`
	ChannelID       string    `json:"channel_id"`
	Mentions        []Mention `json:"mentions,omitempty"`
	MentionRoles    []string  `json:"mention_roles,omitempty"`
	EditedTimestamp *string   `json:"edited_timestamp,omitempty"`
	State           string    `json:"state,omitempty"`
}

// IsDirect reports whether the message was sent outside of a guild
func (m *Message) IsDirect() bool {
	return m.GuildID == "" || m.GuildID == DirectMessageGuild
}

// Channel is a resolved channel
type Channel struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	GuildID string `json:"guild_id,omitempty" yaml:"guild_id,omitempty"`
}

// Role is a guild role
type Role struct {
	Name string `json:"name" yaml:"name"`
}

// Guild is a resolved guild with its roles keyed by role id
type Guild struct {
	ID    string          `json:"id" yaml:"id"`
	Name  string          `json:"name" yaml:"name"`
	Roles map[string]Role `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// DecodeEvent parses a JSON encoded message event
func DecodeEvent(data []byte) (MessageEvent, error) {
	var ev MessageEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return MessageEvent{}, err
	}
	switch ev.Type {
	case "":
		ev.Type = EventCreated
	case EventCreated, EventUpdated:
	default:
		return MessageEvent{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return ev, nil
}
