package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/word-ntfy/pkg/types"
)

const cdnBase = "https://cdn.discordapp.com/"

// AvatarURL returns the avatar image for an author, or the default avatar
// derived from the discriminator when they have none.
func AvatarURL(author *types.Author) string {
	if author == nil {
		return cdnBase + "embed/avatars/0.png"
	}
	if author.Avatar != "" {
		ext := "png"
		if strings.HasPrefix(author.Avatar, "a_") {
			ext = "gif"
		}
		return fmt.Sprintf("%savatars/%s/%s.%s", cdnBase, author.ID, author.Avatar, ext)
	}
	disc, _ := strconv.Atoi(author.Discriminator)
	return fmt.Sprintf("%sembed/avatars/%d.png", cdnBase, disc%5)
}

// MessageLink returns the client route that jumps to a message
func MessageLink(msg *types.Message) string {
	guild := msg.GuildID
	if guild == "" {
		guild = types.DirectMessageGuild
	}
	return fmt.Sprintf("/channels/%s/%s/%s", guild, msg.ChannelID, msg.ID)
}
