// Package interfaces defines the collaborator interfaces the detection engine depends on.
package interfaces

import "github.com/Veraticus/word-ntfy/pkg/types"

// ChannelResolver looks up channels by id.
type ChannelResolver interface {
	Channel(id string) (*types.Channel, bool)
}

// GuildResolver looks up guilds by id.
type GuildResolver interface {
	Guild(id string) (*types.Guild, bool)
}

// Resolver combines the reference lookups used while formatting.
type Resolver interface {
	ChannelResolver
	GuildResolver
}

// UserState exposes the local user and their relationships.
type UserState interface {
	CurrentUserID() string
	IsFriend(userID string) bool
	IsBlocked(userID string) bool
}

// MuteState reports client side mute settings.
type MuteState interface {
	IsGuildMuted(guildID string) bool
	IsChannelMuted(guildID, channelID string) bool
}

// ChannelFocus reports the channel currently open in the client.
type ChannelFocus interface {
	SelectedChannelID(guildID string) string
}

// RateLimiter limits notification frequency.
type RateLimiter interface {
	Allow() bool
}

// Navigator opens a message in the client when a notification is activated.
type Navigator interface {
	TransitionTo(path string)
}
