package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by BadgerDB v4. The muse CLI uses it to keep
// agent state across invocations under the data directory.
type Badger struct {
	db   *badger.DB
	opts *Options
}

// BadgerOptions controls how the BadgerDB store opens.
type BadgerOptions struct {
	// Options is the common kv options (separator).
	Options *Options

	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence. Useful for
	// exercising the real engine in tests and in the demo command.
	InMemory bool

	// Logger receives badger's error and warning output. Nil means
	// slog.Default(). Badger's info/debug chatter is logged at debug
	// level either way.
	Logger *slog.Logger
}

// NewBadger opens a BadgerDB-backed Store.
func NewBadger(bopts BadgerOptions) (*Badger, error) {
	if !bopts.InMemory && bopts.Dir == "" {
		return nil, errors.New("kv: BadgerOptions.Dir required without InMemory")
	}
	l := bopts.Logger
	if l == nil {
		l = slog.Default()
	}
	db, err := badger.Open(badger.DefaultOptions(bopts.Dir).
		WithInMemory(bopts.InMemory).
		WithLogger(badgerLogger{l}))
	if err != nil {
		return nil, fmt.Errorf("kv: open badger: %w", err)
	}
	return &Badger{db: db, opts: bopts.Options}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.opts.encode(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (b *Badger) Set(_ context.Context, key Key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.opts.encode(key), value)
	})
}

// Delete is a blind tombstone write; absent keys do not error.
func (b *Badger) Delete(_ context.Context, key Key) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.opts.encode(key))
	})
}

func (b *Badger) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	var pfx []byte
	if p := b.opts.encode(prefix); len(p) > 0 {
		pfx = append(p, b.opts.sep())
	}

	return func(yield func(Entry, error) bool) {
		stopped := false
		err := b.db.View(func(txn *badger.Txn) error {
			o := badger.DefaultIteratorOptions
			o.Prefix = pfx
			it := txn.NewIterator(o)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				e := Entry{Key: b.opts.decode(item.KeyCopy(nil)), Value: val}
				if !yield(e, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(Entry{}, err)
		}
	}
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger adapts slog to badger.Logger. Info and debug noise from
// compaction goes to debug level.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(f string, v ...any)   { b.l.Error(fmt.Sprintf("badger: "+f, v...)) }
func (b badgerLogger) Warningf(f string, v ...any) { b.l.Warn(fmt.Sprintf("badger: "+f, v...)) }
func (b badgerLogger) Infof(f string, v ...any)    { b.l.Debug(fmt.Sprintf("badger: "+f, v...)) }
func (b badgerLogger) Debugf(f string, v ...any)   { b.l.Debug(fmt.Sprintf("badger: "+f, v...)) }
