package detector

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/word-ntfy/pkg/cache"
	"github.com/Veraticus/word-ntfy/pkg/config"
	"github.com/Veraticus/word-ntfy/pkg/format"
	"github.com/Veraticus/word-ntfy/pkg/testutil"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

const selfID = "100"

type fixture struct {
	pipeline *Pipeline
	settings *config.Settings
	sink     *testutil.MockNotifier
	client   *testutil.MockClient
	recorder *recorder
}

type recorder struct {
	mu      sync.Mutex
	reasons []string
	scans   int
}

func (r *recorder) RecordDecision(notified bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notified {
		reason = "notified"
	}
	r.reasons = append(r.reasons, reason)
}

func (r *recorder) ObserveScan(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++
}

func newFixture(t *testing.T, mutate func(c *config.Config)) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Triggers = []string{"cat", "dog"}
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.Validate(cfg))

	client := testutil.NewMockClient(selfID).
		AddChannel("c1", "general", "g1").
		AddChannel("c2", "random", "g1").
		AddGuild("g1", "Pets", map[string]string{"r1": "mods"})

	f := &fixture{
		settings: config.NewSettings(cfg, "", nil),
		sink:     testutil.NewMockNotifier(),
		client:   client,
		recorder: &recorder{},
	}

	p, err := New(Options{
		Settings:  f.settings,
		Cache:     cache.New(100, time.Hour),
		Sink:      f.sink,
		Resolver:  client,
		Users:     client,
		Mutes:     client,
		Focus:     client,
		Navigator: client,
		Recorder:  f.recorder,
	})
	require.NoError(t, err)
	f.pipeline = p
	return f
}

func guildMessage(id, content string) *types.Message {
	return &types.Message{
		ID:        id,
		Content:   content,
		Author:    &types.Author{ID: "200", Username: "alice", Discriminator: "0001"},
		GuildID:   "g1",
		ChannelID: "c1",
	}
}

func created(msg *types.Message) types.MessageEvent {
	return types.MessageEvent{Type: types.EventCreated, Message: msg}
}

func updated(msg *types.Message) types.MessageEvent {
	return types.MessageEvent{Type: types.EventUpdated, Message: msg}
}

func TestPipeline_Notifies(t *testing.T) {
	f := newFixture(t, nil)

	d := f.pipeline.OnMessageEvent(created(guildMessage("m1", "I saw a cat today")))
	require.True(t, d.Notified, d.Reason)

	payloads := f.sink.GetPayloads()
	require.Len(t, payloads, 1)
	p := payloads[0]
	assert.Equal(t, "alice#0001 mentioned 1 triggers in #general", p.Header)
	assert.Equal(t, "I saw a CAT today", p.Body)
	assert.Equal(t, "/channels/g1/c1/m1", p.Link)
	assert.Equal(t, "https://cdn.discordapp.com/embed/avatars/1.png", p.AvatarURL)
	assert.Equal(t, 5*time.Second, p.Timeout)
	assert.False(t, p.Urgent)
	assert.NotEmpty(t, p.ID)

	require.NotNil(t, p.OnActivate)
	p.OnActivate()
	assert.Equal(t, []string{"/channels/g1/c1/m1"}, f.client.Navigations())

	assert.Equal(t, []string{"notified"}, f.recorder.reasons)
	assert.Equal(t, 1, f.recorder.scans)
}

func TestPipeline_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		event  types.MessageEvent
		reason string
	}{
		{
			name:   "no triggers",
			mutate: func(c *config.Config) { c.Triggers = nil },
			event:  created(guildMessage("m", "cat")),
			reason: ReasonNoTriggers,
		},
		{
			name:   "no message",
			event:  types.MessageEvent{Type: types.EventCreated},
			reason: ReasonInvalidMessage,
		},
		{
			name:   "no author",
			event:  created(&types.Message{ID: "m", Content: "cat"}),
			reason: ReasonInvalidMessage,
		},
		{
			name:   "empty content",
			event:  created(guildMessage("m", "")),
			reason: ReasonInvalidMessage,
		},
		{
			name: "still sending",
			event: func() types.MessageEvent {
				m := guildMessage("m", "cat")
				m.State = types.MessageStateSending
				return created(m)
			}(),
			reason: ReasonSending,
		},
		{
			name:   "no match",
			event:  created(guildMessage("m", "concatenate")),
			reason: ReasonNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mutate)
			d := f.pipeline.OnMessageEvent(tt.event)
			assert.False(t, d.Notified)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Empty(t, f.sink.GetAttempts())
		})
	}
}

func TestPipeline_IgnorePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		setup  func(c *testutil.MockClient)
		msg    func(m *types.Message)
		reason string
	}{
		{
			name: "self wins over every other rule",
			setup: func(c *testutil.MockClient) {
				c.Blocked[selfID] = true
				c.MutedGuilds["g1"] = true
			},
			msg: func(m *types.Message) {
				m.Author.ID = selfID
				m.Author.Bot = true
			},
			reason: ReasonSelf,
		},
		{
			name:   "blocked before bot",
			setup:  func(c *testutil.MockClient) { c.Blocked["200"] = true },
			msg:    func(m *types.Message) { m.Author.Bot = true },
			reason: ReasonBlocked,
		},
		{
			name:   "bot",
			msg:    func(m *types.Message) { m.Author.Bot = true },
			reason: ReasonBot,
		},
		{
			name:   "direct message",
			msg:    func(m *types.Message) { m.GuildID = types.DirectMessageGuild },
			reason: ReasonMention,
		},
		{
			name: "mentions the current user",
			msg: func(m *types.Message) {
				m.Mentions = []types.Mention{{ID: selfID, Username: "me", Discriminator: "1"}}
			},
			reason: ReasonMention,
		},
		{
			name:   "lurking in the open channel",
			setup:  func(c *testutil.MockClient) { c.Focused["g1"] = "c1" },
			reason: ReasonLurking,
		},
		{
			name:   "muted guild",
			setup:  func(c *testutil.MockClient) { c.MutedGuilds["g1"] = true },
			reason: ReasonMuted,
		},
		{
			name:   "muted channel",
			setup:  func(c *testutil.MockClient) { c.MutedChannels["g1/c1"] = true },
			reason: ReasonMuted,
		},
		{
			name:   "explicit mute list",
			mutate: func(c *config.Config) { c.MutedGuilds = []string{"g1"} },
			reason: ReasonMutedGuild,
		},
		{
			name:   "friend in a muted guild still notifies",
			mutate: func(c *config.Config) { c.MutedGuilds = []string{"g1"} },
			setup: func(c *testutil.MockClient) {
				c.Friends["200"] = true
				c.MutedGuilds["g1"] = true
			},
			reason: "",
		},
		{
			name: "friend whitelist disabled",
			mutate: func(c *config.Config) {
				c.WhitelistFriends = false
			},
			setup: func(c *testutil.MockClient) {
				c.Friends["200"] = true
				c.MutedGuilds["g1"] = true
			},
			reason: ReasonMuted,
		},
		{
			name: "rules can be switched off",
			mutate: func(c *config.Config) {
				c.IgnoreSelf = false
				c.IgnoreBots = false
				c.IgnoreLurking = false
				c.IgnoreMuted = false
			},
			setup: func(c *testutil.MockClient) {
				c.Focused["g1"] = "c1"
				c.MutedGuilds["g1"] = true
			},
			msg: func(m *types.Message) {
				m.Author.ID = selfID
				m.Author.Bot = true
			},
			reason: "",
		},
		{
			name:   "friends are not exempt from the blocked rule",
			setup:  func(c *testutil.MockClient) { c.Friends["200"] = true; c.Blocked["200"] = true },
			reason: ReasonBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mutate)
			if tt.setup != nil {
				tt.setup(f.client)
			}
			msg := guildMessage("m", "my cat")
			if tt.msg != nil {
				tt.msg(msg)
			}

			d := f.pipeline.OnMessageEvent(created(msg))
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.reason == "", d.Notified)
		})
	}
}

func TestPipeline_EditDedup(t *testing.T) {
	f := newFixture(t, nil)

	assert.True(t, f.pipeline.OnMessageEvent(created(guildMessage("m1", "hello cat"))).Notified)
	assert.Equal(t, ReasonDuplicate, f.pipeline.OnMessageEvent(created(guildMessage("m1", "hello cat"))).Reason)
	assert.Equal(t, ReasonDuplicate, f.pipeline.OnMessageEvent(updated(guildMessage("m1", "hello cat"))).Reason)
	assert.Equal(t, ReasonDuplicate, f.pipeline.OnMessageEvent(updated(guildMessage("m1", "hello there cat"))).Reason)

	d := f.pipeline.OnMessageEvent(updated(guildMessage("m1", "hello there cat and dog")))
	require.True(t, d.Notified)
	assert.Equal(t, "alice#0001 mentioned 2 triggers in #general", d.Payload.Header)
	assert.Len(t, f.sink.GetPayloads(), 2)
}

func TestPipeline_EditTimestampMarksEdit(t *testing.T) {
	f := newFixture(t, nil)

	assert.True(t, f.pipeline.OnMessageEvent(created(guildMessage("m1", "cat"))).Notified)

	edited := guildMessage("m1", "cat dog")
	ts := "2024-01-01T00:00:00Z"
	edited.EditedTimestamp = &ts
	assert.True(t, f.pipeline.OnMessageEvent(created(edited)).Notified)
}

func TestPipeline_TriggerEditsApplyImmediately(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, ReasonNoMatch, f.pipeline.OnMessageEvent(created(guildMessage("m1", "a bird"))).Reason)
	require.NoError(t, f.settings.SetTriggers([]string{"bird"}))
	assert.True(t, f.pipeline.OnMessageEvent(created(guildMessage("m2", "a bird"))).Notified)
}

func TestPipeline_BackfillsGuild(t *testing.T) {
	f := newFixture(t, nil)

	msg := guildMessage("m1", "cat")
	msg.GuildID = ""
	d := f.pipeline.OnMessageEvent(created(msg))

	require.True(t, d.Notified, d.Reason)
	assert.Equal(t, "/channels/g1/c1/m1", d.Payload.Link)
}

func TestPipeline_FormattingFailureStillNotifies(t *testing.T) {
	f := newFixture(t, nil)
	f.client.PanicOnChannel = true

	d := f.pipeline.OnMessageEvent(created(guildMessage("m1", "cat")))
	require.True(t, d.Notified)
	assert.Equal(t, format.ErrorText, d.Payload.Header)
	assert.Equal(t, "CAT", d.Payload.Body)

	// the message is still remembered
	assert.Equal(t, ReasonDuplicate, f.pipeline.OnMessageEvent(updated(guildMessage("m1", "cat"))).Reason)
}

type staticSettings struct{ cfg *config.Config }

func (s staticSettings) Snapshot() *config.Config { return s.cfg.Clone() }

func TestPipeline_RecoversFromScanFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TriggerType = "regex"
	cfg.Triggers = []string{"(unclosed"}

	sink := testutil.NewMockNotifier()
	rec := &recorder{}
	p, err := New(Options{
		Settings: staticSettings{cfg},
		Cache:    cache.New(10, time.Hour),
		Sink:     sink,
		Recorder: rec,
	})
	require.NoError(t, err)

	d := p.OnMessageEvent(created(guildMessage("m1", "cat")))
	assert.False(t, d.Notified)
	assert.Equal(t, ReasonError, d.Reason)
	assert.Equal(t, []string{ReasonError}, rec.reasons)

	// later events are still processed
	cfg.TriggerType = "plain"
	cfg.Triggers = []string{"cat"}
	assert.True(t, p.OnMessageEvent(created(guildMessage("m2", "cat"))).Notified)
}

func TestPipeline_DesktopNotifications(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.NotificationType = config.NotificationDesktop
		c.HeaderFormat = "{USER_NAME} in {GUILD_NAME}"
		c.BodyFormat = "{TRIGGERS}: {CONTENT}"
	})

	d := f.pipeline.OnMessageEvent(created(guildMessage("m1", "Dog and cat")))
	require.True(t, d.Notified)
	assert.True(t, d.Payload.Urgent)
	assert.Zero(t, d.Payload.Timeout)
	assert.Equal(t, "alice in Pets", d.Payload.Header)
	assert.Equal(t, "Dog, cat: Dog and cat", d.Payload.Body)
}

func TestPipeline_SinkErrorIsLogged(t *testing.T) {
	f := newFixture(t, nil)
	f.sink.SetError(errors.New("toast already visible"))

	d := f.pipeline.OnMessageEvent(created(guildMessage("m1", "cat")))
	assert.True(t, d.Notified)
	assert.Len(t, f.sink.GetAttempts(), 1)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	settings := config.NewSettings(nil, "", nil)
	c := cache.New(1, time.Hour)
	sink := testutil.NewMockNotifier()

	_, err := New(Options{Cache: c, Sink: sink})
	assert.Error(t, err)
	_, err = New(Options{Settings: settings, Sink: sink})
	assert.Error(t, err)
	_, err = New(Options{Settings: settings, Cache: c})
	assert.Error(t, err)
}
