// Package jobmgr runs named background jobs with cancellation and status
// callbacks. At most one job per name is live at a time.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//
//	err := jm.StartAsync("conversation-watcher", func(ctx context.Context) error {
//	    // tick until ctx is cancelled
//	    return nil
//	})
//
//	// later...
//	_ = jm.Stop("conversation-watcher")
//
// Stop waits for the job function to return, so it must not be called from
// inside the job itself.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrAlreadyRunning = errors.New("job already running")
	ErrNotRunning     = errors.New("job not running")
)

// Job represents a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
	done   chan struct{}
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:conversation-watcher
//	error:conversation-watcher:boom
//	done:conversation-watcher
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a new Manager. The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// If a job with the same name is already running, ErrAlreadyRunning is returned.
// Jobs are removed automatically after completion (success or failure).
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job '%s': %w", name, ErrAlreadyRunning)
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{Name: name, Cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = job
	m.mu.Unlock()

	go func() {
		defer close(job.done)
		defer cancel()
		m.report("running:" + name)

		err := runner(ctx)
		if err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job by name and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("job '%s': %w", name, ErrNotRunning)
	}
	job.Cancel()
	<-job.done
	return nil
}

// Running reports whether a job with the given name is live.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: conversation-watcher"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
