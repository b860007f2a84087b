package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"postro/internal/domain"
	"postro/internal/notify"
	"github.com/gin-gonic/gin"
)

type cartView struct {
	*domain.Cart
	ItemCount     int    `json:"itemCount"`
	TotalCents    int64  `json:"totalCents"`
	TimeRemaining string `json:"timeRemaining"`
}

func toCartView(cart *domain.Cart, now time.Time) *cartView {
	if cart == nil {
		return nil
	}
	return &cartView{
		Cart:          cart,
		ItemCount:     cart.ItemCount(),
		TotalCents:    cart.TotalCents(),
		TimeRemaining: domain.TimeRemaining(cart.ExpiresAt, now),
	}
}

func getCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), sessionID(c))
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartView(cart, time.Now()))
	}
}

func addCartItemHandler(svc CartService) gin.HandlerFunc {
	type addItemRequest struct {
		ProductID string `json:"productId" binding:"required"`
	}
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), sessionID(c), req.ProductID)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toCartView(cart, time.Now()))
	}
}

func updateCartItemHandler(svc CartService) gin.HandlerFunc {
	type updateRequest struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	return func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
			return
		}
		cart, err := svc.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("productId"), *req.Quantity)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartView(cart, time.Now()))
	}
}

func removeCartItemHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.RemoveItem(c.Request.Context(), sessionID(c), c.Param("productId"))
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartView(cart, time.Now()))
	}
}

func touchCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Touch(c.Request.Context(), sessionID(c))
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			writeCartError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// watchCartHandler streams cart snapshots (and toasts, when a subscriber is
// configured) as server-sent events for the lifetime of the request.
func watchCartHandler(watcher CartWatcher, toasts ToastSubscriber) gin.HandlerFunc {
	type event struct {
		name string
		data interface{}
	}
	return func(c *gin.Context) {
		sid := sessionID(c)
		ctx := c.Request.Context()
		events := make(chan event, 8)

		cancelWatch, err := watcher.Watch(ctx, sid, func(cart *domain.Cart) {
			select {
			case events <- event{name: "cart", data: toCartView(cart, time.Now())}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			writeCartError(c, err)
			return
		}
		defer cancelWatch()

		if toasts != nil {
			cancelToasts, err := toasts.SubscribeToasts(sid, func(toast notify.Toast) {
				select {
				case events <- event{name: "toast", data: toast}:
				case <-ctx.Done():
				}
			})
			if err == nil {
				defer cancelToasts()
			}
		}

		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case ev := <-events:
				c.SSEvent(ev.name, ev.data)
				return true
			}
		})
	}
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "out of stock", "code": "OUT_OF_STOCK"})
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "not enough stock", "code": "NOT_ENOUGH_STOCK"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": "NOT_FOUND"})
	case errors.Is(err, domain.ErrRemoteUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable", "code": "REMOTE_UNAVAILABLE"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
