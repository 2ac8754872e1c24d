package mind

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keshon/chatter/internal/ai"
)

var mentionRe = regexp.MustCompile(`<@!?\d+>`)

// Outcome describes what happened to one dispatched trigger. Kind is always
// set, even when the generator failed and nothing was sent.
type Outcome struct {
	Kind      Kind
	ChannelID string
	Sent      bool
	Silent    bool // the generator chose not to reply
	Err       error
}

// Dispatcher turns a Trigger into a generator request and delivers the reply.
// Failures never escape Handle: they end up in the Outcome and the log.
type Dispatcher struct {
	gen ai.Generator
	out Sender
	log zerolog.Logger
}

func NewDispatcher(gen ai.Generator, out Sender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{gen: gen, out: out, log: log}
}

// Handle runs one reply attempt.
func (d *Dispatcher) Handle(ctx context.Context, t Trigger) (o Outcome) {
	o = Outcome{Kind: t.Kind, ChannelID: t.ChannelID}
	log := d.log.With().
		Str("dispatch_id", uuid.NewString()).
		Str("trigger", string(t.Kind)).
		Str("channel", t.ChannelName).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			o.Sent = false
			o.Err = fmt.Errorf("dispatch panic: %v", r)
			log.Error().Str("action", "dispatch_panic").Err(o.Err).Send()
		}
	}()

	resp, err := d.gen.Generate(ctx, buildRequest(t))
	if err != nil {
		o.Err = err
		log.Warn().Str("action", "generate_failed").Err(err).Send()
		return o
	}

	if resp.Note != nil {
		log.Info().Str("action", "memory_note").Str("note", *resp.Note).Send()
	}

	if resp.Reply == nil || strings.TrimSpace(*resp.Reply) == "" {
		o.Silent = true
		log.Debug().Str("action", "stay_silent").Send()
		return o
	}

	if err := d.out.Send(ctx, t.ChannelID, *resp.Reply); err != nil {
		o.Err = fmt.Errorf("send reply: %w", err)
		log.Error().Str("action", "send_failed").Err(err).Send()
		return o
	}

	o.Sent = true
	log.Info().Str("action", "reply_sent").Int("len", len(*resp.Reply)).Send()
	return o
}

// HandleInactive dispatches the silence trigger to the fallback channel.
func (d *Dispatcher) HandleInactive(ctx context.Context, ch Channel, history string) Outcome {
	return d.Handle(ctx, Trigger{
		Kind:        KindInactive,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		History:     history,
	})
}

// HandleConversationActivity dispatches the unaddressed-activity trigger to one channel.
func (d *Dispatcher) HandleConversationActivity(ctx context.Context, ch Channel, history string) Outcome {
	return d.Handle(ctx, Trigger{
		Kind:        KindConversationActivity,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		History:     history,
	})
}

func buildRequest(t Trigger) ai.Request {
	return ai.Request{
		Trigger:     string(t.Kind),
		ChannelName: t.ChannelName,
		Author:      t.Author,
		Message:     stripMentions(t.Text),
		History:     t.History,
	}
}

func stripMentions(text string) string {
	return strings.TrimSpace(mentionRe.ReplaceAllString(text, ""))
}
