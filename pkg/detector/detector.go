// Package detector runs inbound message events through trigger matching,
// ignore rules and the notification cache, and dispatches the result.
package detector

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/cache"
	"github.com/Veraticus/word-ntfy/pkg/config"
	"github.com/Veraticus/word-ntfy/pkg/format"
	"github.com/Veraticus/word-ntfy/pkg/interfaces"
	"github.com/Veraticus/word-ntfy/pkg/notification"
	"github.com/Veraticus/word-ntfy/pkg/trigger"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

// Reasons a message event was suppressed
const (
	ReasonNoTriggers     = "no-triggers"
	ReasonInvalidMessage = "invalid-message"
	ReasonSending        = "sending"
	ReasonNoMatch        = "no-match"
	ReasonSelf           = "self"
	ReasonBlocked        = "blocked"
	ReasonBot            = "bot"
	ReasonMention        = "mention"
	ReasonLurking        = "lurking"
	ReasonMuted          = "muted"
	ReasonMutedGuild     = "muted-guild"
	ReasonDuplicate      = "duplicate"
	ReasonError          = "error"
)

// SettingsProvider supplies the settings in effect for one event
type SettingsProvider interface {
	Snapshot() *config.Config
}

// Recorder observes pipeline outcomes
type Recorder interface {
	RecordDecision(notified bool, reason string)
	ObserveScan(d time.Duration)
}

// Decision is the outcome of one event
type Decision struct {
	Notified bool
	Reason   string
	Matches  *trigger.MatchSet
	Payload  *notification.Payload
}

// Options holds the pipeline's collaborators. Everything but Settings, Cache
// and Sink may be nil.
type Options struct {
	Settings  SettingsProvider
	Cache     *cache.NotificationCache
	Sink      notification.Notifier
	Resolver  interfaces.Resolver
	Users     interfaces.UserState
	Mutes     interfaces.MuteState
	Focus     interfaces.ChannelFocus
	Navigator interfaces.Navigator
	Recorder  Recorder
	Logger    *zap.Logger
}

// Pipeline processes message events one at a time
type Pipeline struct {
	settings  SettingsProvider
	cache     *cache.NotificationCache
	sink      notification.Notifier
	resolver  interfaces.Resolver
	users     interfaces.UserState
	mutes     interfaces.MuteState
	focus     interfaces.ChannelFocus
	navigator interfaces.Navigator
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a pipeline
func New(opts Options) (*Pipeline, error) {
	if opts.Settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{
		settings:  opts.Settings,
		cache:     opts.Cache,
		sink:      opts.Sink,
		resolver:  opts.Resolver,
		users:     opts.Users,
		mutes:     opts.Mutes,
		focus:     opts.Focus,
		navigator: opts.Navigator,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		now:       time.Now,
	}, nil
}

// OnMessageEvent processes one created or updated message. It never panics:
// failures are logged and the event is suppressed.
func (p *Pipeline) OnMessageEvent(ev types.MessageEvent) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("dropping message event after failure",
				zap.Any("panic", r),
				zap.String("message_id", messageID(ev.Message)))
			d = Decision{Reason: ReasonError}
		}
		if p.recorder != nil {
			p.recorder.RecordDecision(d.Notified, d.Reason)
		}
		if !d.Notified {
			p.logger.Debug("suppressed message event",
				zap.String("message_id", messageID(ev.Message)),
				zap.String("reason", d.Reason))
		}
	}()

	cfg := p.settings.Snapshot()
	if len(cfg.Triggers) == 0 {
		return Decision{Reason: ReasonNoTriggers}
	}

	msg := ev.Message
	if msg == nil || msg.Author == nil || msg.Content == "" {
		return Decision{Reason: ReasonInvalidMessage}
	}
	if msg.State == types.MessageStateSending {
		return Decision{Reason: ReasonSending}
	}

	start := p.now()
	matches := trigger.Find(cfg.Triggers, cfg.Mode(), msg.Content)
	if p.recorder != nil {
		p.recorder.ObserveScan(p.now().Sub(start))
	}
	if matches.Empty() {
		return Decision{Reason: ReasonNoMatch}
	}

	msg = p.withGuild(msg)

	if reason := p.ignoreReason(cfg, msg); reason != "" {
		return Decision{Reason: reason, Matches: matches}
	}

	if !p.cache.ShouldNotify(msg.ID, matches, msg.Content, ev.IsEdit()) {
		return Decision{Reason: ReasonDuplicate, Matches: matches}
	}

	payload := p.buildPayload(cfg, matches, msg)
	if err := p.sink.Send(payload); err != nil {
		p.logger.Warn("failed to hand notification to sink",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	p.logger.Info("trigger notification",
		zap.String("message_id", msg.ID),
		zap.String("channel_id", msg.ChannelID),
		zap.Strings("triggers", matches.Keys()))

	return Decision{Notified: true, Matches: matches, Payload: &payload}
}

// withGuild fills in the guild id some clients leave off guild messages
func (p *Pipeline) withGuild(msg *types.Message) *types.Message {
	if msg.GuildID != "" || p.resolver == nil {
		return msg
	}
	ch, ok := p.resolver.Channel(msg.ChannelID)
	if !ok || ch == nil || ch.GuildID == "" {
		return msg
	}
	out := *msg
	out.GuildID = ch.GuildID
	return &out
}

func (p *Pipeline) buildPayload(cfg *config.Config, matches *trigger.MatchSet, msg *types.Message) notification.Payload {
	f := format.NewFormatter(p.resolver, cfg.ContextRadius, p.logger)
	link := format.MessageLink(msg)

	payload := notification.Payload{
		ID:        uuid.NewString(),
		Header:    f.Format(cfg.HeaderFormat, matches, msg),
		Body:      f.Format(cfg.BodyFormat, matches, msg),
		AvatarURL: format.AvatarURL(msg.Author),
		Link:      link,
		Timeout:   cfg.Timeout(),
		Time:      p.now(),
	}
	if cfg.NotificationType == config.NotificationDesktop {
		payload.Urgent = true
		payload.Timeout = 0
	}
	if p.navigator != nil {
		nav := p.navigator
		payload.OnActivate = func() { nav.TransitionTo(link) }
	}
	return payload
}

func messageID(msg *types.Message) string {
	if msg == nil {
		return ""
	}
	return msg.ID
}
