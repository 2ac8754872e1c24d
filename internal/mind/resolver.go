package mind

import (
	"slices"
	"strings"
)

// DefaultKeywords are the substrings that make the participant feel addressed.
var DefaultKeywords = []string{
	"david", "bisbal",
	"buleria", "bulería",
	"camina y",
	"babel",
	"almeria", "almería",
	"maquinas", "máquinas", "makinas",
	"latino",
}

// activityMarker is the part of the ConversationWatcher the resolver touches.
type activityMarker interface {
	Mark(channelID string)
	Reset(channelID string)
}

// debouncer is the part of the InactivityTimer the resolver touches.
type debouncer interface {
	Reset()
}

// Pending is an event whose bookkeeping is done and whose trigger is still undecided.
type Pending struct {
	Event         Event
	repliedToSelf bool
}

// SetRepliedToSelf records the outcome of the reply lookup.
func (p *Pending) SetRepliedToSelf(v bool) { p.repliedToSelf = v }

// rule pairs a trigger kind with its predicate. consume runs when the rule wins.
type rule struct {
	kind    Kind
	match   func(r *Resolver, p *Pending) bool
	consume func(r *Resolver, p *Pending)
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{kind: KindMention, match: (*Resolver).mentioned},
	{kind: KindReply, match: func(_ *Resolver, p *Pending) bool { return p.repliedToSelf }},
	{kind: KindKeyword, match: (*Resolver).hasKeyword},
	{
		kind: KindJoin,
		// read at decision time: a join won while a reply lookup was pending
		// has already consumed the count
		match: func(r *Resolver, p *Pending) bool { return r.counter.Reached(p.Event.ChannelID) },
		consume: func(r *Resolver, p *Pending) {
			r.counter.Reset(p.Event.ChannelID)
			r.watcher.Reset(p.Event.ChannelID)
		},
	},
}

// Resolver turns inbound events into at most one Trigger each, keeping the
// per-channel History, Counter and watcher membership up to date.
// Not safe for concurrent use: the Engine loop is its only caller.
type Resolver struct {
	selfID   string
	keywords []string
	history  *History
	counter  *Counter
	watcher  activityMarker
	timer    debouncer
}

// NewResolver wires a resolver to its state. Keywords are matched case-insensitively.
func NewResolver(selfID string, keywords []string, history *History, counter *Counter, watcher activityMarker, timer debouncer) *Resolver {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return &Resolver{
		selfID:   selfID,
		keywords: kw,
		history:  history,
		counter:  counter,
		watcher:  watcher,
		timer:    timer,
	}
}

// Observe does the bookkeeping for ev. It returns false for the participant's own
// messages and for other bots: those never produce a trigger.
func (r *Resolver) Observe(ev Event) (*Pending, bool) {
	ch := ev.ChannelID

	if r.selfID != "" && ev.AuthorID == r.selfID {
		r.counter.Reset(ch)
		r.history.Add(ch, ev.AuthorName, ev.Text, true)
		r.timer.Reset()
		r.watcher.Reset(ch)
		return nil, false
	}
	if ev.Bot {
		return nil, false
	}

	r.history.Add(ch, ev.AuthorName, ev.Text, false)
	r.counter.Increment(ch)
	r.watcher.Mark(ch)
	r.timer.Reset()

	return &Pending{Event: ev}, true
}

// NeedsReplyLookup reports whether Decide depends on a reference lookup.
// A mention outranks a reply, so the lookup is skipped for mentions.
func (r *Resolver) NeedsReplyLookup(p *Pending) bool {
	return p.Event.ReferenceID != "" && !r.mentioned(p)
}

// Decide walks the rule list and returns the first matching trigger.
func (r *Resolver) Decide(p *Pending) (Trigger, bool) {
	for _, rl := range rules {
		if !rl.match(r, p) {
			continue
		}
		if rl.consume != nil {
			rl.consume(r, p)
		}
		return Trigger{
			Kind:        rl.kind,
			ChannelID:   p.Event.ChannelID,
			ChannelName: p.Event.ChannelName,
			Author:      p.Event.AuthorName,
			Text:        p.Event.Text,
			History:     r.history.Formatted(p.Event.ChannelID),
		}, true
	}
	return Trigger{}, false
}

func (r *Resolver) mentioned(p *Pending) bool {
	return r.selfID != "" && slices.Contains(p.Event.Mentions, r.selfID)
}

func (r *Resolver) hasKeyword(p *Pending) bool {
	if p.Event.Text == "" {
		return false
	}
	text := strings.ToLower(p.Event.Text)
	for _, k := range r.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
