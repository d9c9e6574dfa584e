package kv_test

import (
	"context"
	"strings"
	"testing"

	"github.com/haivivi/muse/pkg/kv"
)

func TestBadger(t *testing.T) {
	testStore(t, func(t *testing.T, opts *kv.Options) kv.Store {
		t.Helper()
		s, err := kv.NewBadger(kv.BadgerOptions{Options: opts, InMemory: true})
		if err != nil {
			t.Fatalf("NewBadger: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := kv.Key{"agent", "default", "state"}

	s, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := s.Set(ctx, key, []byte("snapshot")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "snapshot" {
		t.Fatalf("Get = %q, want %q", got, "snapshot")
	}
}

func TestBadgerNeedsDir(t *testing.T) {
	_, err := kv.NewBadger(kv.BadgerOptions{})
	if err == nil {
		t.Fatal("on-disk store opened without a directory")
	}
	if !strings.Contains(err.Error(), "Dir") {
		t.Fatalf("error = %v", err)
	}
}
