package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourorg/hbnb-web/hbnb"
)

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) Amenities(context.Context) ([]hbnb.Amenity, error) {
	n := s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if n == 1 {
		return []hbnb.Amenity{{ID: "a1", Name: "Pool"}}, nil
	}
	return []hbnb.Amenity{{ID: "a1", Name: "Pool"}, {ID: "a2", Name: "WiFi"}}, nil
}

type memKV struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *memKV) Get(_ context.Context, k string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[k]
	if !ok {
		return "", errors.New("nil")
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, k, v string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[k] = v
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestFreshEntryServedFromMemory(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	c := New(src, Options{StaleAfter: time.Hour, Logger: quiet()})
	defer c.Close()

	for i := 0; i < 3; i++ {
		got, err := c.Amenities(context.Background())
		if err != nil || len(got) != 1 {
			t.Fatalf("Amenities = %v, %v", got, err)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Fatalf("source calls = %d, want 1", n)
	}
}

func TestStaleEntryRefreshedInBackground(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	c := New(src, Options{StaleAfter: time.Nanosecond, Logger: quiet()})

	if got, _ := c.Amenities(context.Background()); len(got) != 1 {
		t.Fatalf("first = %v", got)
	}
	time.Sleep(time.Millisecond)
	// stale copy is still returned immediately
	if got, _ := c.Amenities(context.Background()); len(got) != 1 {
		t.Fatalf("stale = %v", got)
	}
	c.Close()
	if got := len(c.local().Amenities); got != 2 {
		t.Fatalf("refreshed len = %d, want 2", got)
	}
}

func TestSharedEntryUsedBeforeSource(t *testing.T) {
	t.Parallel()

	kv := &memKV{vals: map[string]string{}}
	b, _ := json.Marshal(envelope{Amenities: []hbnb.Amenity{{ID: "a9", Name: "Sauna"}}, FetchedAt: time.Now()})
	kv.vals[cacheKey] = string(b)

	src := &countingSource{}
	c := New(src, Options{KV: kv, StaleAfter: time.Hour, Logger: quiet()})
	defer c.Close()

	got, err := c.Amenities(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "Sauna" {
		t.Fatalf("Amenities = %v, %v", got, err)
	}
	if n := src.calls.Load(); n != 0 {
		t.Fatalf("source calls = %d, want 0", n)
	}
}

func TestFetchWritesShared(t *testing.T) {
	t.Parallel()

	kv := &memKV{vals: map[string]string{}}
	c := New(&countingSource{}, Options{KV: kv, Logger: quiet()})
	defer c.Close()

	if _, err := c.Amenities(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.vals[cacheKey]; !ok {
		t.Fatal("catalog not written to KV")
	}
}

func TestSourceErrorWithEmptyCache(t *testing.T) {
	t.Parallel()

	c := New(&countingSource{err: errors.New("down")}, Options{Logger: quiet()})
	defer c.Close()
	if _, err := c.Amenities(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
