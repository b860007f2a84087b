package watch

import (
	"context"
	"errors"
	"testing"

	"postro/internal/domain"
)

type stubCartSource struct {
	cart *domain.Cart
	err  error
}

func (s *stubCartSource) Get(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func TestSnapshotPassesCartThrough(t *testing.T) {
	cart := &domain.Cart{SessionID: "s1"}
	hub := NewHub(nil, &stubCartSource{cart: cart}, nil)

	if got := hub.snapshot(context.Background(), "s1"); got != cart {
		t.Fatalf("snapshot = %+v, want passthrough", got)
	}
}

func TestSnapshotMapsMissingCartToNil(t *testing.T) {
	hub := NewHub(nil, &stubCartSource{err: domain.ErrNotFound}, nil)

	if got := hub.snapshot(context.Background(), "s1"); got != nil {
		t.Fatalf("expected nil for missing cart, got %+v", got)
	}
}

func TestSnapshotToleratesLoadErrors(t *testing.T) {
	// A transient load failure must not crash the watcher; the next change
	// triggers a fresh read.
	hub := NewHub(nil, &stubCartSource{err: errors.New("connection reset")}, nil)

	if got := hub.snapshot(context.Background(), "s1"); got != nil {
		t.Fatalf("expected nil on load error, got %+v", got)
	}
}
