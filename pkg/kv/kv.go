// Package kv is the small key-value layer behind agent continuity. The
// muse CLI snapshots agent state (history, learned patterns, tool scores)
// between process runs; keys are hierarchical paths such as
// Key{"agent", "default", "state"} encoded with a configurable separator.
//
// Two implementations are provided: Badger for on-disk continuity and
// Memory for tests.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrNotFound reports that a key is not in the store.
var ErrNotFound = errors.New("kv: not found")

// Key is a path of string segments. Segments must not contain the
// configured separator byte; encoding panics otherwise.
type Key []string

// String joins the key with ':' for display and debugging. Storage
// encoding goes through Options.encode instead.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is one key-value pair yielded by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with path-based keys.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error

	// List yields the entries under prefix in lexicographic order of
	// the encoded key, stopping at the first storage error. A nil
	// prefix yields the whole store. The prefix matches whole
	// segments: Key{"a"} covers "a:b" but not "ab".
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Close releases the store's resources.
	Close() error
}

// DefaultSeparator joins key segments in storage encoding unless
// Options.Separator overrides it.
const DefaultSeparator byte = ':'

// Options configures store behavior shared by all implementations.
type Options struct {
	// Separator is the byte used to join key segments when encoding.
	// Zero means DefaultSeparator.
	Separator byte
}

func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

// encode converts a Key to its storage byte representation.
func (o *Options) encode(k Key) []byte {
	s := o.sep()
	buf := make([]byte, 0, 16*len(k))
	for i, seg := range k {
		if strings.IndexByte(seg, s) >= 0 {
			panic(fmt.Sprintf("kv: key segment %q contains separator %q", seg, s))
		}
		if i > 0 {
			buf = append(buf, s)
		}
		buf = append(buf, seg...)
	}
	return buf
}

// decode converts a storage byte representation back to a Key.
func (o *Options) decode(b []byte) Key {
	return Key(strings.Split(string(b), string(o.sep())))
}
