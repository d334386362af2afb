// Package testutil provides thread-safe test doubles for the engine's collaborators.
package testutil

import (
	"sync"
	"time"

	"github.com/Veraticus/word-ntfy/pkg/notification"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

// MockNotifier is a thread-safe mock implementation of notification.Notifier for testing
type MockNotifier struct {
	mu        sync.Mutex
	payloads  []notification.Payload
	attempts  []notification.Payload
	sendErr   error
	sendDelay time.Duration
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements the Notifier interface
func (m *MockNotifier) Send(p notification.Payload) error {
	m.mu.Lock()
	delay := m.sendDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = append(m.attempts, p)
	if m.sendErr != nil {
		return m.sendErr
	}
	m.payloads = append(m.payloads, p)
	return nil
}

// GetPayloads returns a copy of successfully sent payloads
func (m *MockNotifier) GetPayloads() []notification.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Payload, len(m.payloads))
	copy(result, m.payloads)
	return result
}

// GetAttempts returns a copy of all attempted sends (including failures)
func (m *MockNotifier) GetAttempts() []notification.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Payload, len(m.attempts))
	copy(result, m.attempts)
	return result
}

// SetError sets the error to return on Send calls
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetDelay sets a delay before each Send call
func (m *MockNotifier) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendDelay = delay
}

// Clear resets the mock state
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = nil
	m.attempts = nil
	m.sendErr = nil
	m.sendDelay = 0
}

// MockClient fakes the chat client: reference lookups, relationships, mute
// state, the focused channel and navigation.
type MockClient struct {
	mu sync.Mutex

	SelfID   string
	Channels map[string]*types.Channel
	Guilds   map[string]*types.Guild
	Friends  map[string]bool
	Blocked  map[string]bool
	// MutedGuilds and MutedChannels hold guild ids and guild/channel pairs
	MutedGuilds   map[string]bool
	MutedChannels map[string]bool
	Focused       map[string]string

	// PanicOnChannel makes Channel panic, standing in for a failing resolver
	PanicOnChannel bool

	navigations []string
}

// NewMockClient creates an empty client for the given local user
func NewMockClient(selfID string) *MockClient {
	return &MockClient{
		SelfID:        selfID,
		Channels:      map[string]*types.Channel{},
		Guilds:        map[string]*types.Guild{},
		Friends:       map[string]bool{},
		Blocked:       map[string]bool{},
		MutedGuilds:   map[string]bool{},
		MutedChannels: map[string]bool{},
		Focused:       map[string]string{},
	}
}

// AddChannel registers a channel
func (m *MockClient) AddChannel(id, name, guildID string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Channels[id] = &types.Channel{ID: id, Name: name, GuildID: guildID}
	return m
}

// AddGuild registers a guild with role names keyed by role id
func (m *MockClient) AddGuild(id, name string, roles map[string]string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &types.Guild{ID: id, Name: name, Roles: map[string]types.Role{}}
	for rid, rname := range roles {
		g.Roles[rid] = types.Role{Name: rname}
	}
	m.Guilds[id] = g
	return m
}

// Channel implements interfaces.ChannelResolver
func (m *MockClient) Channel(id string) (*types.Channel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PanicOnChannel {
		panic("channel store unavailable")
	}
	ch, ok := m.Channels[id]
	return ch, ok
}

// Guild implements interfaces.GuildResolver
func (m *MockClient) Guild(id string) (*types.Guild, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.Guilds[id]
	return g, ok
}

// CurrentUserID implements interfaces.UserState
func (m *MockClient) CurrentUserID() string {
	return m.SelfID
}

// IsFriend implements interfaces.UserState
func (m *MockClient) IsFriend(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Friends[userID]
}

// IsBlocked implements interfaces.UserState
func (m *MockClient) IsBlocked(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Blocked[userID]
}

// IsGuildMuted implements interfaces.MuteState
func (m *MockClient) IsGuildMuted(guildID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MutedGuilds[guildID]
}

// IsChannelMuted implements interfaces.MuteState
func (m *MockClient) IsChannelMuted(guildID, channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MutedChannels[guildID+"/"+channelID]
}

// SelectedChannelID implements interfaces.ChannelFocus
func (m *MockClient) SelectedChannelID(guildID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Focused[guildID]
}

// TransitionTo implements interfaces.Navigator
func (m *MockClient) TransitionTo(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigations = append(m.navigations, path)
}

// Navigations returns the paths passed to TransitionTo
func (m *MockClient) Navigations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.navigations...)
}
