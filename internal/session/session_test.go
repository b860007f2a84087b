package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type memStorage struct {
	values map[string]string
	getErr error
	setErr error
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]string{}}
}

func (m *memStorage) Get(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *memStorage) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func TestResolveIsIdempotent(t *testing.T) {
	storage := newMemStorage()

	first := Resolve(storage)
	second := Resolve(storage)

	if first == "" {
		t.Fatal("expected non-empty session id")
	}
	if first != second {
		t.Fatalf("expected stable id, got %q then %q", first, second)
	}
	if storage.values[StorageKey] != first {
		t.Fatalf("expected id persisted under %q", StorageKey)
	}
}

func TestResolveReusesExistingID(t *testing.T) {
	storage := newMemStorage()
	storage.values[StorageKey] = "session_123_abc"

	if got := Resolve(storage); got != "session_123_abc" {
		t.Fatalf("expected stored id, got %q", got)
	}
}

func TestResolveFallsBackWhenStorageUnavailable(t *testing.T) {
	storage := newMemStorage()
	storage.getErr = errors.New("storage unavailable")
	storage.setErr = errors.New("storage unavailable")

	id := Resolve(storage)
	if id == "" {
		t.Fatal("expected ephemeral id despite storage failure")
	}
	if !strings.HasPrefix(id, "session_") {
		t.Fatalf("unexpected id format %q", id)
	}
}

func TestNewIDFormat(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id := NewID(now)

	if !strings.HasPrefix(id, "session_1700000000000_") {
		t.Fatalf("unexpected id %q", id)
	}
	suffix := strings.TrimPrefix(id, "session_1700000000000_")
	if len(suffix) == 0 || len(suffix) > 9 {
		t.Fatalf("unexpected suffix length in %q", id)
	}
}

func TestNewIDUnique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID(now)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
