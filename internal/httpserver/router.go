package httpserver

import (
	"context"
	"log"

	"postro/internal/domain"
	"postro/internal/metrics"
	"postro/internal/notify"
	productsvc "postro/internal/service/product"
	salessvc "postro/internal/service/saleslog"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartService is the subset of the cart service used by the HTTP layer.
type CartService interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	Touch(ctx context.Context, sessionID string) error
}

// CartWatcher delivers live cart snapshots for a session.
type CartWatcher interface {
	Watch(ctx context.Context, sessionID string, onChange func(*domain.Cart)) (func(), error)
}

// ToastSubscriber forwards transient messages published for a session.
type ToastSubscriber interface {
	SubscribeToasts(sessionID string, handler func(notify.Toast)) (func(), error)
}

// Deps carries the services the router wires handlers to.
type Deps struct {
	ProductSvc *productsvc.Service
	CartSvc    CartService
	SalesSvc   *salessvc.Service
	Watcher    CartWatcher
	Toasts     ToastSubscriber // optional; toasts are skipped when nil
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(allowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowCredentials = true
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.Use(sessionMiddleware())

	api.GET("/products", listProductsHandler(deps.ProductSvc))
	api.GET("/products/:id", getProductHandler(deps.ProductSvc))

	cart := api.Group("/cart")
	cart.GET("", getCartHandler(deps.CartSvc))
	cart.POST("/items", addCartItemHandler(deps.CartSvc))
	cart.PATCH("/items/:productId", updateCartItemHandler(deps.CartSvc))
	cart.DELETE("/items/:productId", removeCartItemHandler(deps.CartSvc))
	cart.POST("/touch", touchCartHandler(deps.CartSvc))
	cart.GET("/watch", watchCartHandler(deps.Watcher, deps.Toasts))

	api.GET("/sales/recent", recentSalesHandler(deps.SalesSvc))
	api.GET("/sales/top-products", topProductsHandler(deps.SalesSvc))
	api.GET("/sales/stats", salesStatsHandler(deps.SalesSvc))
	api.GET("/sales", querySalesHandler(deps.SalesSvc))

	return router
}
