package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/word-ntfy/pkg/types"
)

const sample = `
self: "100"
friends: ["200"]
blocked: ["300"]
guilds:
  - id: g1
    name: Pets
    muted: true
    focused: c2
    roles:
      r1: mods
    channels:
      - id: c1
        name: general
      - id: c2
        name: random
        muted: true
direct:
  - id: d1
    name: alice
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)

	ch, ok := d.Channel("c1")
	require.True(t, ok)
	assert.Equal(t, types.Channel{ID: "c1", Name: "general", GuildID: "g1"}, *ch)

	dm, ok := d.Channel("d1")
	require.True(t, ok)
	assert.Empty(t, dm.GuildID)

	_, ok = d.Channel("missing")
	assert.False(t, ok)

	g, ok := d.Guild("g1")
	require.True(t, ok)
	assert.Equal(t, "Pets", g.Name)
	assert.Equal(t, "mods", g.Roles["r1"].Name)

	assert.Equal(t, "100", d.CurrentUserID())
	assert.True(t, d.IsFriend("200"))
	assert.False(t, d.IsFriend("300"))
	assert.True(t, d.IsBlocked("300"))
	assert.True(t, d.IsGuildMuted("g1"))
	assert.True(t, d.IsChannelMuted("g1", "c2"))
	assert.False(t, d.IsChannelMuted("g1", "c1"))
	assert.Equal(t, "c2", d.SelectedChannelID("g1"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("guilds: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "100", d.CurrentUserID())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFocus(t *testing.T) {
	d := New()
	d.Focus("g1", "c1")
	assert.Equal(t, "c1", d.SelectedChannelID("g1"))
	d.Focus("g1", "")
	assert.Empty(t, d.SelectedChannelID("g1"))
}

func TestTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		guild   string
		channel string
	}{
		{"guild message", "/channels/g1/c1/m1", "g1", "c1"},
		{"direct message", "/channels/@me/d1/m1", "", "d1"},
		{"not a message link", "/settings/account", "g1", ""},
		{"missing channel", "/channels/g1", "g1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			d.TransitionTo(tt.path)
			assert.Equal(t, tt.channel, d.SelectedChannelID(tt.guild))
		})
	}
}

func TestLearn(t *testing.T) {
	d := New()
	d.Learn(&types.Message{Guild: &types.Guild{ID: "g9", Name: "Birds"}})
	d.Learn(nil)
	d.Learn(&types.Message{})

	g, ok := d.Guild("g9")
	require.True(t, ok)
	assert.Equal(t, "Birds", g.Name)
}

func TestReplace(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)

	d.Replace(File{Self: "999"})
	assert.Equal(t, "999", d.CurrentUserID())
	_, ok := d.Channel("c1")
	assert.False(t, ok)
}
