package ai

import (
	"strings"
	"sync"
)

// DefaultMaxContextLength bounds the remembered context before it is reset.
const DefaultMaxContextLength = 12000

const memoryKey = "memory"

// KV is the persistence the memory needs. *datastore.DataStore satisfies it.
type KV interface {
	Get(key string) (any, bool)
	Add(key string, value any)
}

// Memory is the generator's running context: the persona text plus notes the
// model proposed to remember. When it grows past max it falls back to the
// persona text before the next note is appended. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	initial string
	context string
	max     int
	kv      KV
}

// NewMemory creates a memory seeded with the persona text. kv may be nil.
// A previously persisted context is restored when present.
func NewMemory(initial string, max int, kv KV) *Memory {
	if max <= 0 {
		max = DefaultMaxContextLength
	}
	m := &Memory{initial: initial, context: initial, max: max, kv: kv}
	if kv != nil {
		if v, ok := kv.Get(memoryKey); ok {
			if s, ok := v.(string); ok && strings.HasPrefix(s, initial) {
				m.context = s
			}
		}
	}
	return m
}

// Context returns the current remembered context.
func (m *Memory) Context() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.context
}

// Store appends a proposed note. An oversized context is reset first, so the
// latest note always survives.
func (m *Memory) Store(note *string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.context) > m.max {
		m.context = m.initial
	}
	if note != nil {
		m.context += "\n" + *note
	}
	m.persistLocked()
}

// Reset drops every note and keeps only the persona text.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context = m.initial
	m.persistLocked()
}

func (m *Memory) persistLocked() {
	if m.kv != nil {
		m.kv.Add(memoryKey, m.context)
	}
}
