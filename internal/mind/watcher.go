package mind

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/keshon/chatter/pkg/jobmgr"
)

// DefaultWatchPeriod is how often the watcher looks for channels with fresh activity.
const DefaultWatchPeriod = 5 * time.Minute

const watcherJob = "conversation-watcher"

// FlushFunc receives the channels that were active during the last cycle.
// ctx is cancelled when the watcher stops.
type FlushFunc func(ctx context.Context, active []string)

// ConversationWatcher periodically reports channels that had activity since the
// previous cycle. The dirty set is snapshotted and cleared before flush runs, so
// marks made during flush belong to the next cycle. Safe for concurrent use.
type ConversationWatcher struct {
	period time.Duration
	flush  FlushFunc
	jobs   *jobmgr.Manager

	mu     sync.Mutex
	active map[string]struct{}
}

// NewConversationWatcher creates a stopped watcher. jobs may be nil.
func NewConversationWatcher(period time.Duration, flush FlushFunc, jobs *jobmgr.Manager) *ConversationWatcher {
	if period <= 0 {
		period = DefaultWatchPeriod
	}
	if jobs == nil {
		jobs = jobmgr.NewManager(nil)
	}
	return &ConversationWatcher{
		period: period,
		flush:  flush,
		jobs:   jobs,
		active: make(map[string]struct{}),
	}
}

// Start begins the periodic cycle. Calling Start on a running watcher does nothing.
func (w *ConversationWatcher) Start() {
	_ = w.jobs.StartAsync(watcherJob, w.run)
}

// Cancel stops future cycles and waits for the running one to finish.
func (w *ConversationWatcher) Cancel() {
	_ = w.jobs.Stop(watcherJob)
}

// Running reports whether the periodic cycle is live.
func (w *ConversationWatcher) Running() bool {
	return w.jobs.Running(watcherJob)
}

// Mark records activity in a channel.
func (w *ConversationWatcher) Mark(channelID string) {
	w.mu.Lock()
	w.active[channelID] = struct{}{}
	w.mu.Unlock()
}

// Reset forgets activity in a channel, e.g. after a more specific trigger handled it.
func (w *ConversationWatcher) Reset(channelID string) {
	w.mu.Lock()
	delete(w.active, channelID)
	w.mu.Unlock()
}

// IsActive reports whether the channel is in the dirty set.
func (w *ConversationWatcher) IsActive(channelID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.active[channelID]
	return ok
}

func (w *ConversationWatcher) run(ctx context.Context) error {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if active := w.drain(); len(active) > 0 && w.flush != nil {
				w.flush(ctx, active)
			}
		}
	}
}

// drain snapshots and clears the dirty set in one step.
func (w *ConversationWatcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.active) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.active))
	for id := range w.active {
		out = append(out, id)
	}
	w.active = make(map[string]struct{})
	sort.Strings(out)
	return out
}
