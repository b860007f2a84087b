// Package cart owns the session-scoped cart lifecycle: creation, item
// mutations, reservation expiry, and the sweep that releases expired carts.
package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"postro/internal/cache"
	"postro/internal/domain"
	"postro/internal/metrics"
	"postro/internal/notify"
	cartrepo "postro/internal/repository/cart"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the reservation window added after every cart mutation.
const DefaultTTL = 60 * time.Minute

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	DecrementStock(ctx context.Context, id string, n int) (int, error)
	RestoreStock(ctx context.Context, id string, n int) error
}

type salesRepo interface {
	Append(ctx context.Context, entry domain.SaleLog) error
}

// Publisher fans a committed cart change out to live watchers.
type Publisher interface {
	Publish(ctx context.Context, sessionID string)
}

// Deps carries the collaborators of the cart service.
type Deps struct {
	Carts     cartrepo.Repository
	Products  productRepo
	Sales     salesRepo
	Cache     cache.CartCache
	Publisher Publisher
	Notifier  notify.Notifier
	TTL       time.Duration
	Logger    *log.Logger
}

type Service struct {
	repo      cartrepo.Repository
	products  productRepo
	sales     salesRepo
	cache     cache.CartCache
	publisher Publisher
	notifier  notify.Notifier
	ttl       time.Duration
	logger    *log.Logger
	sfg       singleflight.Group
	now       func() time.Time
}

func New(deps Deps) *Service {
	if deps.TTL <= 0 {
		deps.TTL = DefaultTTL
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Noop{}
	}
	return &Service{
		repo:      deps.Carts,
		products:  deps.Products,
		sales:     deps.Sales,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		ttl:       deps.TTL,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Get returns the cart snapshot for a session, or nil when none exists.
// Reads go through the cache; concurrent misses for the same session are
// collapsed with singleflight.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		if s.cache != nil {
			cart, err := s.cache.Get(ctx, sessionID)
			if err == nil {
				return cart, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.logger.Printf("cart: cache get session=%s error=%v", sessionID, err)
			}
		}

		cart, err := s.repo.Get(ctx, sessionID)
		if errors.Is(err, domain.ErrNotFound) {
			return (*domain.Cart)(nil), nil
		}
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			go func() {
				if err := s.cache.Set(context.Background(), sessionID, cart); err != nil {
					s.logger.Printf("cart: cache set session=%s error=%v", sessionID, err)
				}
			}()
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem reserves one unit of a product for the session. The product is
// re-fetched so the stock check never trusts the caller's cached copy. The
// stock decrement is a single conditional write; the sale log append that
// follows is best effort and retried independently, so a failed append can
// leave a decrement without a log entry (known consistency gap).
func (s *Service) AddItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	cart, err := s.addItem(ctx, sessionID, productID)
	s.countOp("add", err)
	return cart, err
}

func (s *Service) addItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		metrics.OutOfStockRejections.Inc()
		s.notifier.Toast(ctx, sessionID, notify.MsgOutOfStock)
		return nil, domain.ErrOutOfStock
	}

	remaining, err := s.products.DecrementStock(ctx, productID, 1)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			// Lost the race for the last unit.
			metrics.OutOfStockRejections.Inc()
			s.notifier.Toast(ctx, sessionID, notify.MsgOutOfStock)
			return nil, domain.ErrOutOfStock
		}
		return nil, err
	}

	now := s.now()
	cart, err := s.repo.AddItem(ctx, sessionID, *product, now, now.Add(s.ttl))
	if err != nil {
		if restoreErr := s.products.RestoreStock(ctx, productID, 1); restoreErr != nil {
			s.logger.Printf("cart: restore after failed add product=%s error=%v", productID, restoreErr)
		}
		s.notifier.Toast(ctx, sessionID, notify.MsgAddFailed)
		return nil, err
	}

	s.afterMutation(ctx, sessionID)
	s.notifier.Toast(ctx, sessionID, strings.ToUpper(product.Name)+" • ADDED TO CART")
	s.logSale(*product, remaining+1, remaining)
	return cart, nil
}

// UpdateQuantity sets a line to quantity. Zero or negative delegates to
// RemoveItem. Increases reserve additional stock and fail with
// domain.ErrInsufficientStock when the remaining stock cannot cover the
// difference; decreases release the difference.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}
	cart, err := s.updateQuantity(ctx, sessionID, productID, quantity)
	s.countOp("update", err)
	return cart, err
}

func (s *Service) updateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	current, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var line *domain.CartItem
	for i := range current.Items {
		if current.Items[i].ProductID == productID {
			line = &current.Items[i]
			break
		}
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}

	delta := quantity - line.Quantity
	switch {
	case delta > 0:
		if _, err := s.products.DecrementStock(ctx, productID, delta); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				s.notifier.Toast(ctx, sessionID, notify.MsgNotEnoughStock)
			}
			return nil, err
		}
	case delta < 0:
		if err := s.products.RestoreStock(ctx, productID, -delta); err != nil {
			s.logger.Printf("cart: restore on decrease product=%s error=%v", productID, err)
		}
	}

	now := s.now()
	cart, err := s.repo.SetQuantity(ctx, sessionID, productID, quantity, now, now.Add(s.ttl))
	if err != nil {
		if delta > 0 {
			if restoreErr := s.products.RestoreStock(ctx, productID, delta); restoreErr != nil {
				s.logger.Printf("cart: restore after failed update product=%s error=%v", productID, restoreErr)
			}
		}
		return nil, err
	}

	s.afterMutation(ctx, sessionID)
	return cart, nil
}

// RemoveItem deletes a line and releases its reserved stock. Removing an
// absent line succeeds as a no-op. An emptied cart record is deleted, so
// watchers observe nil rather than an empty cart.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	cart, err := s.removeItem(ctx, sessionID, productID)
	s.countOp("remove", err)
	return cart, err
}

func (s *Service) removeItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	now := s.now()
	removed, cart, err := s.repo.RemoveItem(ctx, sessionID, productID, now, now.Add(s.ttl))
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return cart, nil
	}

	if err := s.products.RestoreStock(ctx, productID, removed); err != nil {
		s.logger.Printf("cart: restore on remove product=%s qty=%d error=%v", productID, removed, err)
	}

	s.afterMutation(ctx, sessionID)
	s.notifier.Toast(ctx, sessionID, notify.MsgItemRemoved)
	return cart, nil
}

// Touch extends the reservation window without changing items. Called when
// the cart UI closes while non-empty.
func (s *Service) Touch(ctx context.Context, sessionID string) error {
	now := s.now()
	err := s.repo.Touch(ctx, sessionID, now, now.Add(s.ttl))
	s.countOp("touch", err)
	if err != nil {
		return err
	}
	s.afterMutation(ctx, sessionID)
	return nil
}

// SweepExpired releases every cart whose reservation lapsed at or before
// now. Per-cart failures are logged and collected; they never abort the rest
// of the batch. Re-sweeping an already released cart is a no-op.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	sessions, err := s.repo.ExpiredSessions(ctx, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	var errs []error
	for _, sessionID := range sessions {
		released, err := s.repo.ReleaseExpired(ctx, sessionID, now)
		if err != nil {
			metrics.SweepErrors.Inc()
			s.logger.Printf("cart: sweep session=%s error=%v", sessionID, err)
			errs = append(errs, err)
			continue
		}
		if !released {
			continue
		}
		swept++
		metrics.CartsSwept.Inc()
		s.afterMutation(ctx, sessionID)
	}
	return swept, errors.Join(errs...)
}

func (s *Service) afterMutation(ctx context.Context, sessionID string) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, sessionID); err != nil {
			s.logger.Printf("cart: cache delete session=%s error=%v", sessionID, err)
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, sessionID)
	}
}

// logSale appends the sale entry asynchronously, retrying on failure. The
// entry id is fixed up front so retries stay idempotent.
func (s *Service) logSale(product domain.Product, stockBefore, stockAfter int) {
	entry := domain.SaleLog{
		ID:          uuid.NewString(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Category:    product.Category,
		Tags:        product.Tags,
		StockBefore: stockBefore,
		StockAfter:  stockAfter,
		LoggedAt:    s.now(),
	}

	go func() {
		const attempts = 3
		for i := 0; i < attempts; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := s.sales.Append(ctx, entry)
			cancel()
			if err == nil {
				metrics.SalesLogged.Inc()
				return
			}
			s.logger.Printf("cart: sale log append product=%s attempt=%d error=%v", product.ID, i+1, err)
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}()
}

func (s *Service) countOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.CartOperations.WithLabelValues(op, outcome).Inc()
}
