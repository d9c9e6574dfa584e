package kv

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-memory Store backed by a map. It is safe for
// concurrent use and is the store injected by tests and by agents that
// opt out of on-disk continuity.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	opts *Options
}

// NewMemory creates an in-memory Store. Pass nil for default options.
func NewMemory(opts *Options) *Memory {
	return &Memory{data: make(map[string][]byte), opts: opts}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(m.opts.encode(key))]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	k := string(m.opts.encode(key))
	cp := slices.Clone(value)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = cp
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	k := string(m.opts.encode(key))
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
	return nil
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	// "a:b" must match "a:b:c" but not "a:bc", so the separator is part
	// of the match. An empty prefix scans everything.
	match := ""
	if p := m.opts.encode(prefix); len(p) > 0 {
		match = string(p) + string(m.opts.sep())
	}

	m.mu.RLock()
	matches := make([]Entry, 0, len(m.data))
	for k, v := range m.data {
		if strings.HasPrefix(k, match) {
			matches = append(matches, Entry{Key: m.opts.decode([]byte(k)), Value: slices.Clone(v)})
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matches, func(a, b Entry) int {
		return strings.Compare(string(m.opts.encode(a.Key)), string(m.opts.encode(b.Key)))
	})

	return func(yield func(Entry, error) bool) {
		for _, e := range matches {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error { return nil }
