package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/chatter/internal/mind"
)

// maxMessageLen is Discord's limit for a single message.
const maxMessageLen = 2000

// ChannelByName returns the first text channel with that name in any joined guild.
func (b *Bot) ChannelByName(name string) (mind.Channel, bool) {
	return channelByName(b.dg.State, name)
}

// ChannelByID looks a channel up in the state cache.
func (b *Bot) ChannelByID(id string) (mind.Channel, bool) {
	return channelByID(b.dg.State, id)
}

// IsReplyToSelf reports whether the referenced message was written by the bot.
// The state cache is consulted before the REST API.
func (b *Bot) IsReplyToSelf(ctx context.Context, channelID, messageID string) bool {
	self := b.self()
	if self == "" {
		return false
	}

	if msg, err := b.dg.State.Message(channelID, messageID); err == nil && msg.Author != nil {
		return msg.Author.ID == self
	}

	msg, err := b.dg.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		ev := b.log.Warn()
		if isMissing(err) {
			ev = b.log.Debug()
		}
		ev.Str("action", "reply_lookup").Str("channel_id", channelID).Str("message_id", messageID).Err(err).Send()
		return false
	}
	return msg.Author != nil && msg.Author.ID == self
}

// Send posts text to a channel, split into chunks Discord accepts.
func (b *Bot) Send(ctx context.Context, channelID, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if _, err := b.dg.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send to %s: %w", channelID, err)
		}
	}
	return nil
}

func channelByName(st *discordgo.State, name string) (mind.Channel, bool) {
	st.RLock()
	defer st.RUnlock()
	for _, g := range st.Guilds {
		for _, c := range g.Channels {
			if c.Name == name && isTextChannel(c) {
				return mind.Channel{ID: c.ID, Name: c.Name}, true
			}
		}
	}
	return mind.Channel{}, false
}

func channelByID(st *discordgo.State, id string) (mind.Channel, bool) {
	c, err := st.Channel(id)
	if err != nil {
		return mind.Channel{}, false
	}
	return mind.Channel{ID: c.ID, Name: c.Name}, true
}

func isTextChannel(c *discordgo.Channel) bool {
	return c.Type == discordgo.ChannelTypeGuildText || c.Type == discordgo.ChannelTypeGuildNews
}

// isMissing reports a deleted or unreadable message: expected, not worth a warning.
func isMissing(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		return code == http.StatusNotFound || code == http.StatusForbidden
	}
	return false
}

// splitMessage breaks msg into chunks of at most limit bytes, preferring
// newline boundaries and never cutting a UTF-8 sequence.
func splitMessage(msg string, limit int) []string {
	var result []string
	for len(msg) > limit {
		cut := strings.LastIndex(msg[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(msg[cut]) {
				cut--
			}
			if cut == 0 {
				// no rune start in range: invalid UTF-8, cut on bytes
				cut = limit
			}
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}
