package mind

import (
	"sync"
	"time"
)

// DefaultInactivityTimeout is the silence after which the participant speaks up.
const DefaultInactivityTimeout = 30 * time.Minute

// InactivityTimer is a single debounced deadline. Every Reset cancels the
// pending wait and arms a fresh one; fire runs once per expiry that was not
// superseded. Safe for concurrent use.
type InactivityTimer struct {
	timeout time.Duration
	fire    func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped on every Reset/Cancel; stale expiries compare against it
}

// NewInactivityTimer creates a disarmed timer. Call Init to arm it.
func NewInactivityTimer(timeout time.Duration, fire func()) *InactivityTimer {
	if timeout <= 0 {
		timeout = DefaultInactivityTimeout
	}
	return &InactivityTimer{timeout: timeout, fire: fire}
}

// Init arms the timer for the first time.
func (t *InactivityTimer) Init() {
	t.Reset()
}

// Reset cancels any outstanding wait and arms a new one.
// An invocation of fire that already started is not interrupted.
func (t *InactivityTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	gen := t.gen
	t.timer = time.AfterFunc(t.timeout, func() { t.expire(gen) })
}

// Cancel stops the outstanding wait without re-arming.
func (t *InactivityTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Armed reports whether a wait is pending.
func (t *InactivityTimer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *InactivityTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

func (t *InactivityTimer) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		// superseded by a Reset or Cancel before we got the lock
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()

	if t.fire != nil {
		t.fire()
	}
}
