package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/word-ntfy/pkg/testutil"
	"github.com/Veraticus/word-ntfy/pkg/trigger"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

const (
	channelA = "111111111111111111"
	channelB = "222222222222222222"
)

func newClient() *testutil.MockClient {
	return testutil.NewMockClient("1").
		AddChannel(channelA, "general", "g1").
		AddChannel(channelB, "memes", "g1").
		AddGuild("g1", "Pets", map[string]string{"r1": "mods"})
}

func message(content string) *types.Message {
	return &types.Message{
		ID:        "m1",
		Content:   content,
		Author:    &types.Author{ID: "42", Username: "alice", Discriminator: "1"},
		GuildID:   "g1",
		ChannelID: channelA,
	}
}

func TestRender_Placeholders(t *testing.T) {
	matches := trigger.MatchSetOf("Cat", "dog")
	msg := message("a Cat and a dog")
	f := NewFormatter(newClient(), 5, nil)

	tests := []struct {
		tmpl string
		want string
	}{
		{"{USER_TAG} said {TRIGGER_COUNT}", "alice#1 said 2"},
		{"{user_name} ({user_id})", "alice (42)"},
		{"{TRIGGERS}", "Cat, dog"},
		{"{CONTENT}", "a Cat and a dog"},
		{"{TRIGGER_CONTEXT}", "a CAT and a DOG"},
		{"{GUILD_NAME}/{GUILD_ID}", "Pets/g1"},
		{"#{CHANNEL_NAME} {CHANNEL_ID}", "#general " + channelA},
		{"{FOO} stays", "{FOO} stays"},
		{"no placeholders", "no placeholders"},
		{DefaultHeader, "alice#1 mentioned 2 triggers in #general"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			out, err := f.Render(tt.tmpl, matches, msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_DirectMessage(t *testing.T) {
	msg := message("cat")
	msg.GuildID = types.DirectMessageGuild
	f := NewFormatter(newClient(), 5, nil)

	out, err := f.Render("{GUILD_NAME} {GUILD_ID}", trigger.MatchSetOf("cat"), msg)
	require.NoError(t, err)
	assert.Equal(t, "alice 42", out)
}

func TestRender_UnknownGuildFallsBackToAuthor(t *testing.T) {
	msg := message("cat")
	msg.GuildID = "g2"
	f := NewFormatter(newClient(), 5, nil)

	out, err := f.Render("{GUILD_NAME}", trigger.MatchSetOf("cat"), msg)
	require.NoError(t, err)
	assert.Equal(t, "alice", out)
}

func TestRender_References(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *types.Message)
		want   string
	}{
		{
			name: "user mentions",
			mutate: func(m *types.Message) {
				m.Content = "hey <@7> and <@!7>"
				m.Mentions = []types.Mention{{ID: "7", Username: "bob", Discriminator: "0002"}}
			},
			want: "hey @bob#0002 and @bob#0002",
		},
		{
			name: "role mentions",
			mutate: func(m *types.Message) {
				m.Content = "ping <@&r1> <@&r9>"
				m.MentionRoles = []string{"r1", "r9"}
			},
			want: "ping @mods @invalid-role",
		},
		{
			name: "role mentions in a direct message are left alone",
			mutate: func(m *types.Message) {
				m.GuildID = types.DirectMessageGuild
				m.Content = "ping <@&r1>"
				m.MentionRoles = []string{"r1"}
			},
			want: "ping <@&r1>",
		},
		{
			name: "custom emoji",
			mutate: func(m *types.Message) {
				m.Content = "nice <:cat_wave:123456789012345678> <a:party:123456789012345678>"
			},
			want: "nice :cat_wave: :party:",
		},
		{
			name: "every channel reference",
			mutate: func(m *types.Message) {
				m.Content = "see <#" + channelA + "> and <#" + channelB + "> not <#333333333333333333>"
			},
			want: "see #general and #memes not #deleted-channel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := message("")
			tt.mutate(msg)
			f := NewFormatter(newClient(), 5, nil)

			out, err := f.Render("{CONTENT}", trigger.MatchSetOf("cat"), msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_NilResolver(t *testing.T) {
	f := NewFormatter(nil, 5, nil)

	out, err := f.Render("{GUILD_NAME} #{CHANNEL_NAME}", trigger.MatchSetOf("cat"), message("cat"))
	require.NoError(t, err)
	assert.Equal(t, "alice #deleted-channel", out)
}

func TestFormat_FallsBackOnFailure(t *testing.T) {
	client := newClient()
	client.PanicOnChannel = true
	f := NewFormatter(client, 5, nil)
	matches := trigger.MatchSetOf("cat")

	_, err := f.Render(DefaultHeader, matches, message("cat"))
	assert.Error(t, err)
	assert.Equal(t, ErrorText, f.Format(DefaultHeader, matches, message("cat")))

	// templates that never touch the resolver still render
	assert.Equal(t, "CAT", f.Format(DefaultBody, matches, message("cat")))

	assert.Equal(t, ErrorText, f.Format("{CONTENT}", matches, nil))
	assert.Equal(t, ErrorText, f.Format("{CONTENT}", matches, &types.Message{Content: "cat"}))
}

func TestAvatarURL(t *testing.T) {
	tests := []struct {
		name   string
		author *types.Author
		want   string
	}{
		{"static", &types.Author{ID: "1", Avatar: "abc"}, "https://cdn.discordapp.com/avatars/1/abc.png"},
		{"animated", &types.Author{ID: "1", Avatar: "a_abc"}, "https://cdn.discordapp.com/avatars/1/a_abc.gif"},
		{"default from discriminator", &types.Author{ID: "1", Discriminator: "0007"}, "https://cdn.discordapp.com/embed/avatars/2.png"},
		{"no author", nil, "https://cdn.discordapp.com/embed/avatars/0.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvatarURL(tt.author))
		})
	}
}

func TestMessageLink(t *testing.T) {
	assert.Equal(t, "/channels/g1/c1/m1", MessageLink(&types.Message{ID: "m1", GuildID: "g1", ChannelID: "c1"}))
	assert.Equal(t, "/channels/@me/c1/m1", MessageLink(&types.Message{ID: "m1", ChannelID: "c1"}))
}
