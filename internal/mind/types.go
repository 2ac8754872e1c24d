package mind

import "context"

// Kind names the reason an automated reply attempt is dispatched.
// The string value is what the generator sees in the "trigger" field.
type Kind string

const (
	KindMention              Kind = "mention"
	KindReply                Kind = "reply"
	KindKeyword              Kind = "keyword"
	KindJoin                 Kind = "join" // counter threshold reached
	KindInactive             Kind = "inactive"
	KindConversationActivity Kind = "conversation_activity"
)

// Event is one inbound chat message as delivered by the gateway.
type Event struct {
	MessageID   string
	ChannelID   string
	ChannelName string
	AuthorID    string
	AuthorName  string   // display name used in history
	Bot         bool     // author is an automated account
	Text        string   // may be empty
	Mentions    []string // user ids explicitly mentioned
	ReferenceID string   // id of the message this one replies to, if any
}

// Trigger is a resolved decision to ask the generator. Never persisted.
type Trigger struct {
	Kind        Kind
	ChannelID   string
	ChannelName string
	Author      string
	Text        string
	History     string // formatted snapshot taken when the trigger was resolved
}

// Channel is the minimal view of a chat channel the engine needs.
type Channel struct {
	ID   string
	Name string
}

// Directory resolves channels and message references. Misses are not errors.
type Directory interface {
	ChannelByName(name string) (Channel, bool)
	ChannelByID(id string) (Channel, bool)
	// IsReplyToSelf reports whether messageID in channelID was written by the participant.
	// Any lookup failure (missing, forbidden, network) is reported as false.
	IsReplyToSelf(ctx context.Context, channelID, messageID string) bool
}

// Sender delivers outbound text to a channel.
type Sender interface {
	Send(ctx context.Context, channelID, text string) error
}
