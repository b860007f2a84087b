package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"postro/internal/domain"
)

// memProductRepo and memCartRepo back the full-lifecycle scenario tests with
// the same conditional-write semantics as the Postgres repos.

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func (m *memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memProductRepo) DecrementStock(_ context.Context, id string, n int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Stock < n {
		return 0, domain.ErrInsufficientStock
	}
	p.Stock -= n
	return p.Stock, nil
}

func (m *memProductRepo) RestoreStock(_ context.Context, id string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock += n
	return nil
}

type memCartRepo struct {
	mu       sync.Mutex
	carts    map[string]*domain.Cart
	products *memProductRepo
}

func (m *memCartRepo) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (m *memCartRepo) AddItem(ctx context.Context, sessionID string, product domain.Product, now, expiresAt time.Time) (*domain.Cart, error) {
	m.mu.Lock()
	cart, ok := m.carts[sessionID]
	if !ok {
		cart = &domain.Cart{SessionID: sessionID, CreatedAt: now}
		m.carts[sessionID] = cart
	}
	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == product.ID {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   1,
			AddedAt:    now,
		})
	}
	cart.UpdatedAt = now
	cart.ExpiresAt = expiresAt
	m.mu.Unlock()
	return m.Get(ctx, sessionID)
}

func (m *memCartRepo) SetQuantity(ctx context.Context, sessionID, productID string, quantity int, now, expiresAt time.Time) (*domain.Cart, error) {
	m.mu.Lock()
	cart, ok := m.carts[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		m.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	cart.UpdatedAt = now
	cart.ExpiresAt = expiresAt
	m.mu.Unlock()
	return m.Get(ctx, sessionID)
}

func (m *memCartRepo) RemoveItem(ctx context.Context, sessionID, productID string, now, expiresAt time.Time) (int, *domain.Cart, error) {
	m.mu.Lock()
	cart, ok := m.carts[sessionID]
	if !ok {
		m.mu.Unlock()
		return 0, nil, nil
	}
	removed := 0
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			removed = cart.Items[i].Quantity
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	if removed == 0 {
		m.mu.Unlock()
		return 0, nil, nil
	}
	if len(cart.Items) == 0 {
		delete(m.carts, sessionID)
		m.mu.Unlock()
		return removed, nil, nil
	}
	cart.UpdatedAt = now
	cart.ExpiresAt = expiresAt
	m.mu.Unlock()

	after, err := m.Get(ctx, sessionID)
	return removed, after, err
}

func (m *memCartRepo) Touch(_ context.Context, sessionID string, now, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	cart.UpdatedAt = now
	cart.ExpiresAt = expiresAt
	return nil
}

func (m *memCartRepo) ExpiredSessions(_ context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sessions []string
	for id, cart := range m.carts {
		if !cart.ExpiresAt.After(now) {
			sessions = append(sessions, id)
		}
	}
	return sessions, nil
}

func (m *memCartRepo) ReleaseExpired(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	m.mu.Lock()
	cart, ok := m.carts[sessionID]
	if !ok || cart.ExpiresAt.After(now) {
		m.mu.Unlock()
		return false, nil
	}
	items := append([]domain.CartItem(nil), cart.Items...)
	delete(m.carts, sessionID)
	m.mu.Unlock()

	for _, item := range items {
		if err := m.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			return true, err
		}
	}
	return true, nil
}

func newScenarioService(t *testing.T, stock int) (*Service, *memProductRepo, time.Time) {
	t.Helper()
	products := &memProductRepo{products: map[string]*domain.Product{
		"pA": {ID: "pA", Name: "Last Wave", Category: "nature", Stock: stock, PriceCents: 2700},
	}}
	carts := &memCartRepo{carts: map[string]*domain.Cart{}, products: products}

	svc := New(Deps{
		Carts:    carts,
		Products: products,
		Sales:    newStubSalesRepo(),
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, products, now
}

func TestCartLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	svc, products, start := newScenarioService(t, 3)

	// No cart yet.
	cart, err := svc.Get(ctx, "sessA")
	if err != nil || cart != nil {
		t.Fatalf("expected no cart, got %+v err=%v", cart, err)
	}

	// First add creates the cart with one line at qty 1.
	cart, err = svc.AddItem(ctx, "sessA", "pA")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if want := start.Add(DefaultTTL); !cart.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", cart.ExpiresAt, want)
	}

	// Second add increments the same line.
	cart, err = svc.AddItem(ctx, "sessA", "pA")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if p, _ := products.GetByID(ctx, "pA"); p.Stock != 1 {
		t.Fatalf("stock = %d, want 1 after two reservations", p.Stock)
	}

	// Setting quantity to zero removes the line and deletes the empty cart.
	cart, err = svc.UpdateQuantity(ctx, "sessA", "pA", 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if cart != nil {
		t.Fatalf("expected cart deleted, got %+v", cart)
	}
	if got, err := svc.Get(ctx, "sessA"); err != nil || got != nil {
		t.Fatalf("expected nil cart after emptying, got %+v err=%v", got, err)
	}
	if p, _ := products.GetByID(ctx, "pA"); p.Stock != 3 {
		t.Fatalf("stock = %d, want full restore to 3", p.Stock)
	}
}

func TestAddItemBoundedByRemainingStock(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newScenarioService(t, 2)

	for i := 0; i < 2; i++ {
		if _, err := svc.AddItem(ctx, "sessA", "pA"); err != nil {
			t.Fatalf("add %d: %v", i+1, err)
		}
	}

	// Stock is reserved per unit, so the third add finds none left.
	_, err := svc.AddItem(ctx, "sessA", "pA")
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
}

func TestSweepReleasesExpiredCartOnce(t *testing.T) {
	ctx := context.Background()
	svc, products, start := newScenarioService(t, 3)

	if _, err := svc.AddItem(ctx, "sessA", "pA"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if p, _ := products.GetByID(ctx, "pA"); p.Stock != 2 {
		t.Fatalf("stock = %d, want 2", p.Stock)
	}

	expired := start.Add(DefaultTTL + time.Minute)

	swept, err := svc.SweepExpired(ctx, expired)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
	if p, _ := products.GetByID(ctx, "pA"); p.Stock != 3 {
		t.Fatalf("stock = %d, want 3 after release", p.Stock)
	}

	// Second pass finds nothing and must not double-release.
	swept, err = svc.SweepExpired(ctx, expired)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if swept != 0 {
		t.Fatalf("swept = %d, want 0", swept)
	}
	if p, _ := products.GetByID(ctx, "pA"); p.Stock != 3 {
		t.Fatalf("stock = %d, want 3 unchanged", p.Stock)
	}
}
