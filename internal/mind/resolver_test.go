package mind

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selfID = "999"

type resolverFixture struct {
	r       *Resolver
	history *History
	counter *Counter
	marker  *recordingMarker
	timer   *countingDebouncer
}

func newResolverFixture(threshold int) *resolverFixture {
	f := &resolverFixture{
		history: NewHistory(DefaultHistorySize),
		counter: NewCounter(threshold),
		marker:  newRecordingMarker(),
		timer:   &countingDebouncer{},
	}
	f.r = NewResolver(selfID, DefaultKeywords, f.history, f.counter, f.marker, f.timer)
	return f
}

func (f *resolverFixture) resolve(ev Event) (Trigger, bool) {
	p, ok := f.r.Observe(ev)
	if !ok {
		return Trigger{}, false
	}
	return f.r.Decide(p)
}

func userEvent(text string) Event {
	return Event{ChannelID: "c1", ChannelName: "general", AuthorID: "1", AuthorName: "ana", Text: text}
}

func TestResolver_MentionOutranksEverything(t *testing.T) {
	f := newResolverFixture(3)
	f.resolve(userEvent("uno"))
	f.resolve(userEvent("dos"))

	ev := userEvent("<@999> viva bisbal")
	ev.Mentions = []string{selfID}
	tr, ok := f.resolve(ev)

	require.True(t, ok)
	assert.Equal(t, KindMention, tr.Kind)
	assert.Equal(t, 3, f.history.Len("c1"))
	assert.Equal(t, 3, f.counter.Count("c1"), "join did not win, so the counter is not consumed")
	assert.Equal(t, 3, f.marker.marked["c1"])
	assert.Equal(t, 3, f.timer.resets)
}

func TestResolver_ReplyToSelf(t *testing.T) {
	f := newResolverFixture(10)
	ev := userEvent("jaja")
	ev.ReferenceID = "m1"

	p, ok := f.r.Observe(ev)
	require.True(t, ok)
	require.True(t, f.r.NeedsReplyLookup(p))

	p.SetRepliedToSelf(true)
	tr, ok := f.r.Decide(p)
	require.True(t, ok)
	assert.Equal(t, KindReply, tr.Kind)
}

func TestResolver_ReplyToSomeoneElseIsNotATrigger(t *testing.T) {
	f := newResolverFixture(10)
	ev := userEvent("jaja")
	ev.ReferenceID = "m1"

	p, _ := f.r.Observe(ev)
	p.SetRepliedToSelf(false)
	_, ok := f.r.Decide(p)
	assert.False(t, ok)
}

func TestResolver_MentionSkipsReplyLookup(t *testing.T) {
	f := newResolverFixture(10)
	ev := userEvent("<@!999> oye")
	ev.Mentions = []string{selfID}
	ev.ReferenceID = "m1"

	p, _ := f.r.Observe(ev)
	assert.False(t, f.r.NeedsReplyLookup(p))
}

func TestResolver_KeywordIsCaseInsensitive(t *testing.T) {
	f := newResolverFixture(10)
	tr, ok := f.resolve(userEvent("Escuchando a BISBAL hoy"))
	require.True(t, ok)
	assert.Equal(t, KindKeyword, tr.Kind)
	assert.Equal(t, "ana", tr.Author)
	assert.Equal(t, "ana: Escuchando a BISBAL hoy", tr.History)

	tr, ok = f.resolve(userEvent("de ALMERÍA"))
	require.True(t, ok)
	assert.Equal(t, KindKeyword, tr.Kind)
}

func TestResolver_EmptyTextNeverMatchesKeyword(t *testing.T) {
	f := newResolverFixture(10)
	_, ok := f.resolve(userEvent(""))
	assert.False(t, ok)
	assert.Equal(t, 1, f.history.Len("c1"))
}

func TestResolver_SelfMessage(t *testing.T) {
	f := newResolverFixture(10)
	f.resolve(userEvent("hola"))
	f.resolve(userEvent("que tal"))

	ev := Event{ChannelID: "c1", AuthorID: selfID, AuthorName: "David", Text: "bisbal aquí", Mentions: []string{selfID}}
	_, ok := f.resolve(ev)

	assert.False(t, ok)
	assert.Equal(t, 0, f.counter.Count("c1"))
	assert.Equal(t, 1, f.marker.resets["c1"])
	assert.Equal(t, 3, f.timer.resets)
	entries := f.history.Entries("c1")
	require.Len(t, entries, 3)
	assert.True(t, entries[2].Self)
	assert.Contains(t, f.history.Formatted("c1"), "David (you): bisbal aquí")
}

func TestResolver_PeerBotIsIgnored(t *testing.T) {
	f := newResolverFixture(1)
	ev := userEvent("bisbal")
	ev.Bot = true
	ev.Mentions = []string{selfID}

	_, ok := f.resolve(ev)

	assert.False(t, ok)
	assert.Equal(t, 0, f.history.Len("c1"))
	assert.Equal(t, 0, f.counter.Count("c1"))
	assert.Empty(t, f.marker.marked)
	assert.Zero(t, f.timer.resets)
}

func TestResolver_JoinScenario(t *testing.T) {
	f := newResolverFixture(10)

	for i := 1; i <= 9; i++ {
		_, ok := f.resolve(userEvent(fmt.Sprintf("mensaje %d", i)))
		require.False(t, ok, "message %d", i)
	}

	tr, ok := f.resolve(userEvent("mensaje 10"))
	require.True(t, ok)
	assert.Equal(t, KindJoin, tr.Kind)
	assert.Equal(t, 0, f.counter.Count("c1"))
	assert.Equal(t, 1, f.marker.resets["c1"])

	_, ok = f.resolve(userEvent("mensaje 11"))
	assert.False(t, ok)
	assert.Equal(t, 1, f.counter.Count("c1"))
}

func TestResolver_HigherPriorityAtThresholdKeepsCounter(t *testing.T) {
	f := newResolverFixture(2)
	f.resolve(userEvent("hola"))

	tr, ok := f.resolve(userEvent("latino"))
	require.True(t, ok)
	assert.Equal(t, KindKeyword, tr.Kind)

	tr, ok = f.resolve(userEvent("otra cosa"))
	require.True(t, ok)
	assert.Equal(t, KindJoin, tr.Kind)
}

func TestResolver_PendingLookupDoesNotJoinTwice(t *testing.T) {
	f := newResolverFixture(3)
	f.resolve(userEvent("uno"))
	f.resolve(userEvent("dos"))

	ev := userEvent("tres")
	ev.ReferenceID = "m1"
	p, ok := f.r.Observe(ev)
	require.True(t, ok)
	require.True(t, f.r.NeedsReplyLookup(p))

	// a later message wins join while the lookup is still out
	tr, ok := f.resolve(userEvent("cuatro"))
	require.True(t, ok)
	assert.Equal(t, KindJoin, tr.Kind)
	assert.Equal(t, 0, f.counter.Count("c1"))

	p.SetRepliedToSelf(false)
	_, ok = f.r.Decide(p)
	assert.False(t, ok)
	assert.Equal(t, 1, f.marker.resets["c1"])
}

func TestResolver_LookupReturningAtThresholdJoins(t *testing.T) {
	f := newResolverFixture(2)
	f.resolve(userEvent("uno"))

	ev := userEvent("dos")
	ev.ReferenceID = "m1"
	p, ok := f.r.Observe(ev)
	require.True(t, ok)

	p.SetRepliedToSelf(false)
	tr, ok := f.r.Decide(p)
	require.True(t, ok)
	assert.Equal(t, KindJoin, tr.Kind)
	assert.Equal(t, 0, f.counter.Count("c1"))
}
