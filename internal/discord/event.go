package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/chatter/internal/mind"
)

// toEvent converts a gateway message into the engine's event.
func toEvent(m *discordgo.Message, channelName string) mind.Event {
	ev := mind.Event{
		MessageID:   m.ID,
		ChannelID:   m.ChannelID,
		ChannelName: channelName,
		Text:        m.Content,
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.Bot = m.Author.Bot
	}
	ev.AuthorName = resolveDisplayName(m)

	for _, u := range m.Mentions {
		if u != nil {
			ev.Mentions = append(ev.Mentions, u.ID)
		}
	}
	if m.MessageReference != nil && m.MessageReference.MessageID != "" {
		ev.ReferenceID = m.MessageReference.MessageID
	}
	return ev
}

// resolveDisplayName prefers the guild nickname, then the global display name.
func resolveDisplayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author == nil {
		return ""
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
