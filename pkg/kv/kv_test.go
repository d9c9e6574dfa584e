package kv_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/haivivi/muse/pkg/kv"
)

// testStore runs the Store contract against one engine. Everything here
// is behavior callers may rely on regardless of backend; engine-specific
// tests live next to the engine.
func testStore(t *testing.T, open func(t *testing.T, opts *kv.Options) kv.Store) {
	bg := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		s := open(t, nil)
		key := kv.Key{"agent", "default", "state"}

		if _, err := s.Get(bg, key); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("Get before Set = %v, want ErrNotFound", err)
		}
		if err := s.Set(bg, key, []byte("snapshot-v1")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := s.Get(bg, key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != "snapshot-v1" {
			t.Fatalf("Get = %q, want %q", got, "snapshot-v1")
		}
		if err := s.Set(bg, key, []byte("snapshot-v2")); err != nil {
			t.Fatalf("Set again: %v", err)
		}
		if got, _ := s.Get(bg, key); string(got) != "snapshot-v2" {
			t.Fatalf("Get after overwrite = %q, want %q", got, "snapshot-v2")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t, nil)
		key := kv.Key{"agent", "default", "state"}

		if err := s.Set(bg, key, []byte("x")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := s.Delete(bg, key); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(bg, key); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
		}
		// Absent keys delete cleanly.
		if err := s.Delete(bg, kv.Key{"agent", "nobody", "state"}); err != nil {
			t.Fatalf("Delete absent key: %v", err)
		}
	})

	t.Run("ListPrefix", func(t *testing.T) {
		s := open(t, nil)
		seed := []kv.Entry{
			{Key: kv.Key{"agent", "default", "pattern", "question_8_words"}, Value: []byte("p1")},
			{Key: kv.Key{"agent", "default", "pattern", "statement_3_words"}, Value: []byte("p2")},
			{Key: kv.Key{"agent", "default", "state"}, Value: []byte("s1")},
			{Key: kv.Key{"agent", "work", "state"}, Value: []byte("s2")},
			{Key: kv.Key{"report", "20260821"}, Value: []byte("r1")},
		}
		for _, e := range seed {
			if err := s.Set(bg, e.Key, e.Value); err != nil {
				t.Fatalf("Set %v: %v", e.Key, err)
			}
		}

		want := []string{
			"agent:default:pattern:question_8_words",
			"agent:default:pattern:statement_3_words",
		}
		if got := collectKeys(t, s, kv.Key{"agent", "default", "pattern"}); !slices.Equal(got, want) {
			t.Errorf("pattern subtree = %v, want %v", got, want)
		}
		if got := collectKeys(t, s, kv.Key{"agent"}); len(got) != 4 {
			t.Errorf("agent subtree = %v, want 4 keys", got)
		}
		if got := collectKeys(t, s, nil); len(got) != len(seed) {
			t.Errorf("full scan = %v, want %d keys", got, len(seed))
		}
		// Prefixes cover whole segments, not string prefixes of them.
		if got := collectKeys(t, s, kv.Key{"agent", "def"}); got != nil {
			t.Errorf("partial segment matched %v", got)
		}
	})

	t.Run("CustomSeparator", func(t *testing.T) {
		s := open(t, &kv.Options{Separator: 0x1F})
		key := kv.Key{"agent", "work:2026", "state"}

		if err := s.Set(bg, key, []byte("x")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if _, err := s.Get(bg, key); err != nil {
			t.Fatalf("Get: %v", err)
		}
		// The display form joins with ':' no matter what the store
		// encodes with.
		got := collectKeys(t, s, kv.Key{"agent", "work:2026"})
		if !slices.Equal(got, []string{"agent:work:2026:state"}) {
			t.Errorf("List = %v, want [agent:work:2026:state]", got)
		}
	})

	t.Run("ValueOwnership", func(t *testing.T) {
		s := open(t, nil)
		key := kv.Key{"agent", "default", "state"}
		buf := []byte("original")

		if err := s.Set(bg, key, buf); err != nil {
			t.Fatalf("Set: %v", err)
		}
		buf[0] = 'X'

		got, err := s.Get(bg, key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != "original" {
			t.Fatalf("caller's buffer leaked into the store: %q", got)
		}
		got[0] = 'Y'
		if again, _ := s.Get(bg, key); string(again) != "original" {
			t.Fatalf("returned slice aliases the store: %q", again)
		}
	})
}

// collectKeys drains a List into display-form keys.
func collectKeys(t *testing.T, s kv.Store, prefix kv.Key) []string {
	t.Helper()
	var keys []string
	for entry, err := range s.List(context.Background(), prefix) {
		if err != nil {
			t.Fatalf("List %v: %v", prefix, err)
		}
		keys = append(keys, entry.Key.String())
	}
	return keys
}

func TestMemory(t *testing.T) {
	testStore(t, func(t *testing.T, opts *kv.Options) kv.Store {
		t.Helper()
		s := kv.NewMemory(opts)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestKeyString(t *testing.T) {
	for _, tt := range []struct {
		key  kv.Key
		want string
	}{
		{nil, ""},
		{kv.Key{"agent"}, "agent"},
		{kv.Key{"agent", "default", "state"}, "agent:default:state"},
	} {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%v).String() = %q, want %q", []string(tt.key), got, tt.want)
		}
	}
}

func TestSeparatorInSegmentPanics(t *testing.T) {
	s := kv.NewMemory(nil)
	defer s.Close()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Set accepted a segment containing the separator")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "separator") {
			t.Fatalf("panic = %v", r)
		}
	}()
	_ = s.Set(context.Background(), kv.Key{"agent", "bad:name"}, []byte("v"))
}
