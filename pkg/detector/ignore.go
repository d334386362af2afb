package detector

import (
	"slices"

	"github.com/Veraticus/word-ntfy/pkg/config"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

// ignoreReason applies the ignore rules in precedence order and returns the
// first that matches, or "" if the message may notify.
func (p *Pipeline) ignoreReason(cfg *config.Config, msg *types.Message) string {
	author := msg.Author
	self := p.currentUserID()

	if cfg.IgnoreSelf && self != "" && author.ID == self {
		return ReasonSelf
	}
	if cfg.IgnoreBlocked && p.users != nil && p.users.IsBlocked(author.ID) {
		return ReasonBlocked
	}
	if cfg.IgnoreBots && author.Bot {
		return ReasonBot
	}
	if cfg.IgnoreMentions && (msg.IsDirect() || mentions(msg, self)) {
		return ReasonMention
	}
	if cfg.IgnoreLurking && p.focus != nil && msg.ChannelID != "" && p.focus.SelectedChannelID(msg.GuildID) == msg.ChannelID {
		return ReasonLurking
	}

	if cfg.WhitelistFriends && p.users != nil && p.users.IsFriend(author.ID) {
		return ""
	}
	if msg.IsDirect() {
		return ""
	}
	if cfg.IgnoreMuted && p.mutes != nil &&
		(p.mutes.IsGuildMuted(msg.GuildID) || p.mutes.IsChannelMuted(msg.GuildID, msg.ChannelID)) {
		return ReasonMuted
	}
	if slices.Contains(cfg.MutedGuilds, msg.GuildID) {
		return ReasonMutedGuild
	}
	return ""
}

func (p *Pipeline) currentUserID() string {
	if p.users == nil {
		return ""
	}
	return p.users.CurrentUserID()
}

func mentions(msg *types.Message, userID string) bool {
	if userID == "" {
		return false
	}
	for _, m := range msg.Mentions {
		if m.ID == userID {
			return true
		}
	}
	return false
}
