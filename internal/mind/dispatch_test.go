package mind

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/chatter/internal/ai"
)

func TestDispatcher_SendsReply(t *testing.T) {
	gen := &fakeGenerator{}
	out := &fakeSender{}
	d := NewDispatcher(gen, out, zerolog.Nop())

	o := d.Handle(context.Background(), Trigger{
		Kind:        KindMention,
		ChannelID:   "c1",
		ChannelName: "general",
		Author:      "ana",
		Text:        "  <@999> hola <@!12345>  ",
		History:     "ana: <@999> hola",
	})

	assert.Equal(t, Outcome{Kind: KindMention, ChannelID: "c1", Sent: true}, o)
	assert.Equal(t, []sent{{ChannelID: "c1", Text: "re: mention"}}, out.Sent())

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, ai.Request{
		Trigger:     "mention",
		ChannelName: "general",
		Author:      "ana",
		Message:     "hola",
		History:     "ana: <@999> hola",
	}, reqs[0])
}

func TestDispatcher_NullReplyIsSilence(t *testing.T) {
	gen := &fakeGenerator{reply: func(ai.Request) *string { return nil }}
	out := &fakeSender{}

	o := NewDispatcher(gen, out, zerolog.Nop()).Handle(context.Background(), Trigger{Kind: KindJoin, ChannelID: "c1"})

	assert.True(t, o.Silent)
	assert.False(t, o.Sent)
	assert.NoError(t, o.Err)
	assert.Empty(t, out.Sent())
}

func TestDispatcher_GeneratorFailureIsContained(t *testing.T) {
	out := &fakeSender{}
	d := NewDispatcher(&fakeGenerator{err: errGenerator}, out, zerolog.Nop())

	o := d.Handle(context.Background(), Trigger{Kind: KindKeyword, ChannelID: "c1", Text: "bisbal"})

	assert.Equal(t, KindKeyword, o.Kind)
	assert.False(t, o.Sent)
	assert.ErrorIs(t, o.Err, errGenerator)
	assert.Empty(t, out.Sent())
}

func TestDispatcher_PanicIsContained(t *testing.T) {
	out := &fakeSender{}
	d := NewDispatcher(&fakeGenerator{panicMsg: "kaboom"}, out, zerolog.Nop())

	var o Outcome
	require.NotPanics(t, func() {
		o = d.Handle(context.Background(), Trigger{Kind: KindReply, ChannelID: "c1"})
	})
	assert.Equal(t, KindReply, o.Kind)
	assert.Error(t, o.Err)
	assert.Empty(t, out.Sent())
}

func TestDispatcher_SendFailure(t *testing.T) {
	boom := errors.New("missing access")
	out := &fakeSender{err: boom}

	o := NewDispatcher(&fakeGenerator{}, out, zerolog.Nop()).Handle(context.Background(), Trigger{Kind: KindMention, ChannelID: "c1"})

	assert.False(t, o.Sent)
	assert.ErrorIs(t, o.Err, boom)
}

func TestDispatcher_SyntheticTriggers(t *testing.T) {
	gen := &fakeGenerator{}
	out := &fakeSender{}
	d := NewDispatcher(gen, out, zerolog.Nop())
	ch := Channel{ID: "c9", Name: "meme-bot"}

	o := d.HandleInactive(context.Background(), ch, "ana: hola")
	assert.Equal(t, KindInactive, o.Kind)
	o = d.HandleConversationActivity(context.Background(), ch, "")
	assert.Equal(t, KindConversationActivity, o.Kind)

	reqs := gen.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, ai.Request{Trigger: "inactive", ChannelName: "meme-bot", History: "ana: hola"}, reqs[0])
	assert.Equal(t, "conversation_activity", reqs[1].Trigger)
	assert.Len(t, out.Sent(), 2)
}
