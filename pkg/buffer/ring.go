// Package buffer provides a bounded ring that retains the most recent
// values of a stream, such as log lines shown in a status frame.
package buffer

import "sync"

// Ring is a thread-safe fixed-capacity buffer that keeps the most
// recent values. Adding to a full ring overwrites the oldest value.
//
// The buffer uses head and tail counters to implement a circular
// buffer. The window between them is the retained data; Items copies
// it out oldest first.
type Ring[T any] struct {
	mu         sync.Mutex
	buf        []T
	head, tail int64
}

// NewRing creates a ring that retains the last size values.
// A size below 1 is treated as 1.
func NewRing[T any](size int) *Ring[T] {
	if size < 1 {
		size = 1
	}
	return &Ring[T]{buf: make([]T, size)}
}

// Add appends v, evicting the oldest value when the ring is full.
func (r *Ring[T]) Add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.tail%int64(len(r.buf))] = v
	r.tail++
	if r.tail-r.head > int64(len(r.buf)) {
		r.head++
	}
}

// Len returns the number of values currently retained.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.tail - r.head)
}

// Cap returns the retention capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Items returns the retained values from oldest to newest.
// The returned slice is a copy of the buffered data.
func (r *Ring[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, r.tail-r.head)
	for i := r.head; i < r.tail; i++ {
		out = append(out, r.buf[i%int64(len(r.buf))])
	}
	return out
}
