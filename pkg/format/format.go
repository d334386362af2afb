// Package format renders notification headers and bodies from templates.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/excerpt"
	"github.com/Veraticus/word-ntfy/pkg/interfaces"
	"github.com/Veraticus/word-ntfy/pkg/trigger"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

const (
	// DefaultHeader is the header template used when none is configured
	DefaultHeader = "{USER_TAG} mentioned {TRIGGER_COUNT} triggers in #{CHANNEL_NAME}"
	// DefaultBody is the body template used when none is configured
	DefaultBody = "{TRIGGER_CONTEXT}"

	// ErrorText replaces output that could not be rendered
	ErrorText = "Something went wrong while formatting the output. Check the logs"

	deletedChannel = "deleted-channel"
	invalidRole    = "invalid-role"
)

var (
	placeholderRe = regexp.MustCompile(`\{(\w+)\}`)
	emojiRe       = regexp.MustCompile(`<a?(:\w{2,32}:)\d{17,19}>`)
	channelRe     = regexp.MustCompile(`<#(\d{17,19})>`)
)

// Formatter renders templates against a message and its matches
type Formatter struct {
	resolver interfaces.Resolver
	radius   int
	logger   *zap.Logger
}

// NewFormatter creates a formatter. The resolver may be nil, in which case
// every channel, guild and role reference is treated as unresolvable.
func NewFormatter(resolver interfaces.Resolver, radius int, logger *zap.Logger) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Formatter{
		resolver: resolver,
		radius:   radius,
		logger:   logger,
	}
}

// Format renders tmpl, falling back to ErrorText if rendering fails
func (f *Formatter) Format(tmpl string, matches *trigger.MatchSet, msg *types.Message) string {
	out, err := f.Render(tmpl, matches, msg)
	if err != nil {
		f.logger.Error("failed to format notification",
			zap.String("template", tmpl),
			zap.String("message_id", messageID(msg)),
			zap.Error(err))
		return ErrorText
	}
	return out
}

// Render substitutes placeholders in tmpl and rewrites raw mention, role,
// emoji and channel references into readable names.
func (f *Formatter) Render(tmpl string, matches *trigger.MatchSet, msg *types.Message) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	if msg == nil || msg.Author == nil {
		return "", fmt.Errorf("message has no author")
	}

	values := f.placeholders(matches, msg)
	out = placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		value, ok := values[strings.ToUpper(m[1:len(m)-1])]
		if !ok {
			return m
		}
		return value()
	})

	for _, mention := range msg.Mentions {
		re := regexp.MustCompile(`<@!?` + regexp.QuoteMeta(mention.ID) + `>`)
		out = re.ReplaceAllLiteralString(out, "@"+mention.Username+"#"+mention.Discriminator)
	}

	if len(msg.MentionRoles) > 0 && !msg.IsDirect() {
		guild := f.guild(msg)
		for _, roleID := range msg.MentionRoles {
			name := invalidRole
			if guild != nil {
				if role, ok := guild.Roles[roleID]; ok {
					name = role.Name
				}
			}
			re := regexp.MustCompile(`<@&` + regexp.QuoteMeta(roleID) + `>`)
			out = re.ReplaceAllLiteralString(out, "@"+name)
		}
	}

	out = emojiRe.ReplaceAllString(out, "$1")
	out = channelRe.ReplaceAllStringFunc(out, func(m string) string {
		return "#" + f.channelName(channelRe.FindStringSubmatch(m)[1])
	})
	return out, nil
}

// placeholders maps each placeholder to a thunk so expensive values are only
// computed when the template uses them.
func (f *Formatter) placeholders(matches *trigger.MatchSet, msg *types.Message) map[string]func() string {
	author := msg.Author
	return map[string]func() string{
		"CONTENT":  func() string { return msg.Content },
		"TRIGGERS": func() string { return strings.Join(matches.Surfaces(), ", ") },
		"TRIGGER_CONTEXT": func() string {
			return excerpt.Extract(matches, msg.Content, f.radius)
		},
		"TRIGGER_COUNT": func() string { return strconv.Itoa(matches.Len()) },
		"GUILD_ID": func() string {
			if msg.IsDirect() {
				return author.ID
			}
			return msg.GuildID
		},
		"GUILD_NAME": func() string {
			if msg.IsDirect() {
				return author.Username
			}
			if guild := f.guild(msg); guild != nil {
				return guild.Name
			}
			return author.Username
		},
		"CHANNEL_ID":   func() string { return msg.ChannelID },
		"CHANNEL_NAME": func() string { return f.channelName(msg.ChannelID) },
		"USER_ID":      func() string { return author.ID },
		"USER_NAME":    func() string { return author.Username },
		"USER_TAG":     func() string { return author.Tag() },
	}
}

func (f *Formatter) guild(msg *types.Message) *types.Guild {
	if msg.Guild != nil {
		return msg.Guild
	}
	if f.resolver == nil {
		return nil
	}
	guild, ok := f.resolver.Guild(msg.GuildID)
	if !ok {
		return nil
	}
	return guild
}

func (f *Formatter) channelName(id string) string {
	if f.resolver == nil {
		return deletedChannel
	}
	ch, ok := f.resolver.Channel(id)
	if !ok || ch == nil {
		return deletedChannel
	}
	return ch.Name
}

func messageID(msg *types.Message) string {
	if msg == nil {
		return ""
	}
	return msg.ID
}
