package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/chatter/internal/mind"
)

// messageCacheSize is how many recent messages per channel the state keeps,
// so reply lookups usually avoid a REST call.
const messageCacheSize = 200

// Handler receives converted gateway events.
type Handler interface {
	Submit(ev mind.Event)
}

// Bot is the Discord side of the participant: it feeds messages to a Handler
// and implements mind.Directory and mind.Sender on top of the session.
type Bot struct {
	dg  *discordgo.Session
	log zerolog.Logger

	mu      sync.RWMutex
	handler Handler
	selfID  string
}

// New creates a bot session. Nothing connects until Open.
func New(token string, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{dg: dg, log: log}
	b.configureIntents()
	dg.State.MaxMessageCount = messageCacheSize
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

// configureIntents asks only for what the participant reads.
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent
}

// Open connects to the gateway and returns the bot's own user id.
func (b *Bot) Open() (string, error) {
	if err := b.dg.Open(); err != nil {
		return "", fmt.Errorf("failed to open Discord session: %w", err)
	}

	me, err := b.dg.User("@me")
	if err != nil {
		_ = b.dg.Close()
		return "", fmt.Errorf("failed to retrieve bot user: %w", err)
	}

	b.mu.Lock()
	b.selfID = me.ID
	b.mu.Unlock()

	b.log.Info().Str("action", "session_open").Str("user", me.Username).Str("user_id", me.ID).Send()
	return me.ID, nil
}

// Attach starts delivering messages to h. Messages that arrive earlier are dropped.
func (b *Bot) Attach(h Handler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	b.Attach(nil)
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().Str("action", "ready").Int("guilds", len(r.Guilds)).Msg("Discord bot is running")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()
	if h == nil {
		return
	}

	h.Submit(toEvent(m.Message, b.channelName(s, m.ChannelID)))
}

func (b *Bot) channelName(s *discordgo.Session, channelID string) string {
	channel, err := s.State.Channel(channelID)
	if err != nil {
		channel, err = s.Channel(channelID)
		if err != nil {
			b.log.Warn().Str("action", "channel_lookup").Str("channel_id", channelID).Err(err).Send()
			return ""
		}
	}
	return channel.Name
}

func (b *Bot) self() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selfID
}

var (
	_ mind.Directory = (*Bot)(nil)
	_ mind.Sender    = (*Bot)(nil)
)
