// Package directory is a file-backed view of the chat client's state: the
// channels and guilds references resolve to, the local user's relationships,
// mute settings and the channel currently open in each guild.
package directory

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/word-ntfy/pkg/types"
)

// File is the on-disk layout
type File struct {
	Self    string   `yaml:"self"`
	Friends []string `yaml:"friends"`
	Blocked []string `yaml:"blocked"`
	Guilds  []Guild  `yaml:"guilds"`
	// Direct lists direct message channels
	Direct []Channel `yaml:"direct"`
}

// Guild describes one guild and its channels
type Guild struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Muted    bool              `yaml:"muted"`
	Focused  string            `yaml:"focused"`
	Roles    map[string]string `yaml:"roles"`
	Channels []Channel         `yaml:"channels"`
}

// Channel describes one channel
type Channel struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Muted bool   `yaml:"muted"`
}

// Directory answers lookups against a loaded File. It is safe for concurrent
// use and can be swapped out wholesale with Replace.
type Directory struct {
	mu       sync.RWMutex
	self     string
	friends  map[string]bool
	blocked  map[string]bool
	channels map[string]*types.Channel
	guilds   map[string]*types.Guild
	mutedG   map[string]bool
	mutedC   map[string]bool
	focused  map[string]string
}

// New returns an empty directory
func New() *Directory {
	d := &Directory{}
	d.Replace(File{})
	return d
}

// Load reads a directory file
func Load(path string) (*Directory, error) {
	// #nosec G304 - the path is supplied by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	return Parse(data)
}

// Parse decodes a directory from YAML
func Parse(data []byte) (*Directory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse directory: %w", err)
	}
	d := &Directory{}
	d.Replace(f)
	return d, nil
}

// Replace swaps in the contents of f
func (d *Directory) Replace(f File) {
	friends := toSet(f.Friends)
	blocked := toSet(f.Blocked)
	channels := make(map[string]*types.Channel)
	guilds := make(map[string]*types.Guild)
	mutedG := make(map[string]bool)
	mutedC := make(map[string]bool)
	focused := make(map[string]string)

	for _, g := range f.Guilds {
		guild := &types.Guild{ID: g.ID, Name: g.Name, Roles: make(map[string]types.Role, len(g.Roles))}
		for id, name := range g.Roles {
			guild.Roles[id] = types.Role{Name: name}
		}
		guilds[g.ID] = guild
		if g.Muted {
			mutedG[g.ID] = true
		}
		if g.Focused != "" {
			focused[g.ID] = g.Focused
		}
		for _, c := range g.Channels {
			channels[c.ID] = &types.Channel{ID: c.ID, Name: c.Name, GuildID: g.ID}
			if c.Muted {
				mutedC[c.ID] = true
			}
		}
	}
	for _, c := range f.Direct {
		channels[c.ID] = &types.Channel{ID: c.ID, Name: c.Name}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.self = f.Self
	d.friends = friends
	d.blocked = blocked
	d.channels = channels
	d.guilds = guilds
	d.mutedG = mutedG
	d.mutedC = mutedC
	d.focused = focused
}

// Channel implements interfaces.ChannelResolver
func (d *Directory) Channel(id string) (*types.Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ch, ok := d.channels[id]
	if !ok {
		return nil, false
	}
	out := *ch
	return &out, true
}

// Guild implements interfaces.GuildResolver
func (d *Directory) Guild(id string) (*types.Guild, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.guilds[id]
	return g, ok
}

// CurrentUserID implements interfaces.UserState
func (d *Directory) CurrentUserID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.self
}

// IsFriend implements interfaces.UserState
func (d *Directory) IsFriend(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.friends[userID]
}

// IsBlocked implements interfaces.UserState
func (d *Directory) IsBlocked(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.blocked[userID]
}

// IsGuildMuted implements interfaces.MuteState
func (d *Directory) IsGuildMuted(guildID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mutedG[guildID]
}

// IsChannelMuted implements interfaces.MuteState
func (d *Directory) IsChannelMuted(_, channelID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mutedC[channelID]
}

// SelectedChannelID implements interfaces.ChannelFocus
func (d *Directory) SelectedChannelID(guildID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.focused[guildID]
}

// Focus records the channel open in a guild. An empty channel clears it.
func (d *Directory) Focus(guildID, channelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if channelID == "" {
		delete(d.focused, guildID)
		return
	}
	d.focused[guildID] = channelID
}

// TransitionTo focuses the channel named by a message link of the form
// /channels/{guild|@me}/{channel}/{message}. Other paths are ignored.
func (d *Directory) TransitionTo(path string) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) < 3 || parts[0] != "channels" || parts[2] == "" {
		return
	}
	guildID := parts[1]
	if guildID == "@me" {
		guildID = ""
	}
	d.Focus(guildID, parts[2])
}

// Learn records a guild embedded in a message so later references to it
// resolve without a directory entry.
func (d *Directory) Learn(msg *types.Message) {
	if msg == nil || msg.Guild == nil || msg.Guild.ID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.guilds[msg.Guild.ID]; !ok {
		d.guilds[msg.Guild.ID] = msg.Guild
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
