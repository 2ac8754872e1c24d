package mind

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/chatter/internal/ai"
	"github.com/keshon/chatter/pkg/jobmgr"
	"github.com/keshon/chatter/pkg/util"
)

const (
	DefaultInactiveChannel = "meme-bot"
	DefaultActivityWorkers = 2

	eventBuffer = 64
)

// Config tunes the engine. Zero values fall back to the package defaults.
type Config struct {
	SelfID            string
	HistorySize       int
	JoinThreshold     int
	InactivityTimeout time.Duration
	WatchPeriod       time.Duration
	InactiveChannel   string
	Keywords          []string
	ActivityWorkers   int
	// Allowed limits the engine to these channels, by id or name. Empty means all.
	Allowed []string
}

func (c *Config) setDefaults() {
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}
	if c.JoinThreshold <= 0 {
		c.JoinThreshold = DefaultJoinThreshold
	}
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = DefaultInactivityTimeout
	}
	if c.WatchPeriod <= 0 {
		c.WatchPeriod = DefaultWatchPeriod
	}
	if c.InactiveChannel == "" {
		c.InactiveChannel = DefaultInactiveChannel
	}
	if c.Keywords == nil {
		c.Keywords = DefaultKeywords
	}
	if c.ActivityWorkers <= 0 {
		c.ActivityWorkers = DefaultActivityWorkers
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutcomeHook registers a callback that receives every dispatch outcome.
// It runs on the dispatch goroutine.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(e *Engine) { e.onOutcome = fn }
}

// WithJobManager runs the conversation watcher on a shared job manager.
func WithJobManager(jobs *jobmgr.Manager) Option {
	return func(e *Engine) { e.jobs = jobs }
}

// Engine is the single owner of conversation state. Gateway events, reply
// lookups, inactivity expiries and watcher snapshots are all funneled into
// Run, so History, Counter and Resolver are only ever touched by one goroutine.
// Generator calls run on their own goroutines.
type Engine struct {
	cfg        Config
	dir        Directory
	dispatcher *Dispatcher
	log        zerolog.Logger
	onOutcome  func(Outcome)
	jobs       *jobmgr.Manager

	history  *History
	counter  *Counter
	timer    *InactivityTimer
	watcher  *ConversationWatcher
	resolver *Resolver
	allowed  map[string]struct{}

	events   chan Event
	replies  chan *Pending
	inactive chan struct{}
	activity chan []string
	done     chan struct{}
	runOnce  sync.Once
	wg       sync.WaitGroup
}

// NewEngine wires the engine. Run must be called to start processing.
func NewEngine(cfg Config, dir Directory, gen ai.Generator, out Sender, log zerolog.Logger, opts ...Option) *Engine {
	cfg.setDefaults()

	e := &Engine{
		cfg:        cfg,
		dir:        dir,
		dispatcher: NewDispatcher(gen, out, log.With().Str("component", "dispatch").Logger()),
		log:        log,
		history:    NewHistory(cfg.HistorySize),
		counter:    NewCounter(cfg.JoinThreshold),
		allowed:    make(map[string]struct{}, len(cfg.Allowed)),
		events:     make(chan Event, eventBuffer),
		replies:    make(chan *Pending),
		inactive:   make(chan struct{}),
		activity:   make(chan []string),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, a := range cfg.Allowed {
		e.allowed[a] = struct{}{}
	}

	e.timer = NewInactivityTimer(cfg.InactivityTimeout, e.signalInactive)
	e.watcher = NewConversationWatcher(cfg.WatchPeriod, e.signalActivity, e.jobs)
	e.resolver = NewResolver(cfg.SelfID, cfg.Keywords, e.history, e.counter, e.watcher, e.timer)
	return e
}

// Submit hands an inbound event to the engine. It blocks while the event
// buffer is full and drops the event once the engine has stopped.
func (e *Engine) Submit(ev Event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

// Run processes events until ctx is cancelled. On return the timer and the
// watcher are stopped and in-flight dispatches have finished.
func (e *Engine) Run(ctx context.Context) error {
	e.timer.Init()
	e.watcher.Start()
	defer e.shutdown()

	e.log.Info().
		Str("action", "engine_start").
		Int("history_size", e.cfg.HistorySize).
		Int("join_threshold", e.cfg.JoinThreshold).
		Dur("inactivity_timeout", e.cfg.InactivityTimeout).
		Dur("watch_period", e.cfg.WatchPeriod).
		Send()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-e.events:
			e.handleEvent(ctx, ev)
		case p := <-e.replies:
			e.decide(ctx, p)
		case <-e.inactive:
			e.handleInactive(ctx)
		case active := <-e.activity:
			e.handleConversationActivity(ctx, active)
		}
	}
}

func (e *Engine) shutdown() {
	e.runOnce.Do(func() { close(e.done) })
	e.watcher.Cancel()
	e.wg.Wait()
	e.timer.Cancel()
	e.log.Info().Str("action", "engine_stop").Send()
}

func (e *Engine) handleEvent(ctx context.Context, ev Event) {
	if !e.channelAllowed(ev) {
		return
	}

	p, ok := e.resolver.Observe(ev)
	if !ok {
		return
	}

	if e.resolver.NeedsReplyLookup(p) {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			p.SetRepliedToSelf(e.dir.IsReplyToSelf(ctx, ev.ChannelID, ev.ReferenceID))
			select {
			case e.replies <- p:
			case <-e.done:
			}
		}()
		return
	}

	e.decide(ctx, p)
}

func (e *Engine) decide(ctx context.Context, p *Pending) {
	t, ok := e.resolver.Decide(p)
	if !ok {
		return
	}
	e.log.Info().
		Str("action", "trigger").
		Str("kind", string(t.Kind)).
		Str("channel", t.ChannelName).
		Str("author", t.Author).
		Send()
	e.dispatch(func() Outcome { return e.dispatcher.Handle(ctx, t) }, nil)
}

func (e *Engine) handleInactive(ctx context.Context) {
	ch, ok := e.dir.ChannelByName(e.cfg.InactiveChannel)
	if !ok {
		e.log.Warn().Str("action", "inactive_skip").Str("channel", e.cfg.InactiveChannel).Msg("fallback channel not found")
		e.timer.Reset()
		return
	}

	e.log.Info().Str("action", "trigger").Str("kind", string(KindInactive)).Str("channel", ch.Name).Send()
	history := e.history.Formatted(ch.ID)
	e.dispatch(func() Outcome { return e.dispatcher.HandleInactive(ctx, ch, history) }, func() {
		if ctx.Err() == nil {
			e.timer.Reset()
		}
	})
}

// activityTarget is one channel of a conversation-activity flush, with its
// history captured on the loop.
type activityTarget struct {
	ch      Channel
	history string
}

func (e *Engine) handleConversationActivity(ctx context.Context, active []string) {
	targets := make([]activityTarget, 0, len(active))
	for _, id := range active {
		ch, ok := e.dir.ChannelByID(id)
		if !ok {
			e.log.Debug().Str("action", "activity_skip").Str("channel_id", id).Msg("channel not found")
			continue
		}
		targets = append(targets, activityTarget{ch: ch, history: e.history.Formatted(ch.ID)})
	}
	if len(targets) == 0 {
		return
	}

	e.log.Info().Str("action", "trigger").Str("kind", string(KindConversationActivity)).Int("channels", len(targets)).Send()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_ = util.Parallel(ctx, targets, e.cfg.ActivityWorkers, func(ctx context.Context, a activityTarget) error {
			e.report(e.dispatcher.HandleConversationActivity(ctx, a.ch, a.history))
			return nil
		})
	}()
}

func (e *Engine) dispatch(run func() Outcome, after func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.report(run())
		if after != nil {
			after()
		}
	}()
}

func (e *Engine) report(o Outcome) {
	if e.onOutcome != nil {
		e.onOutcome(o)
	}
}

// signalInactive runs on the timer goroutine.
func (e *Engine) signalInactive() {
	select {
	case e.inactive <- struct{}{}:
	case <-e.done:
	}
}

// signalActivity runs on the watcher goroutine.
func (e *Engine) signalActivity(ctx context.Context, active []string) {
	select {
	case e.activity <- active:
	case <-ctx.Done():
	case <-e.done:
	}
}

func (e *Engine) channelAllowed(ev Event) bool {
	if len(e.allowed) == 0 {
		return true
	}
	if _, ok := e.allowed[ev.ChannelID]; ok {
		return true
	}
	_, ok := e.allowed[ev.ChannelName]
	return ok
}
