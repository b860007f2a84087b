package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"postro/internal/cache"
	"postro/internal/config"
	"postro/internal/db"
	"postro/internal/httpserver"
	"postro/internal/notify"
	cartrepo "postro/internal/repository/cart"
	productrepo "postro/internal/repository/product"
	salesrepo "postro/internal/repository/saleslog"
	cartsvc "postro/internal/service/cart"
	productsvc "postro/internal/service/product"
	salessvc "postro/internal/service/saleslog"
	"postro/internal/watch"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	rdb, err := db.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer rdb.Close()

	deps := httpserver.Deps{}

	// Toasts are cosmetic; a missing message bus degrades to a silent sink
	// instead of blocking startup.
	var notifier notify.Notifier = notify.Noop{}
	natsNotifier, err := notify.NewNATSNotifier(notify.DefaultConfig(cfg.NATSURL), logger)
	if err != nil {
		logger.Printf("nats unavailable, toasts disabled: %v", err)
	} else {
		defer natsNotifier.Close()
		notifier = natsNotifier
		deps.Toasts = natsNotifier
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	salesRepo := salesrepo.NewPostgres(dbpool, logger)

	hub := watch.NewHub(rdb, cartRepo, logger)
	cartService := cartsvc.New(cartsvc.Deps{
		Carts:     cartRepo,
		Products:  productRepo,
		Sales:     salesRepo,
		Cache:     cache.NewRedisCache(rdb),
		Publisher: hub,
		Notifier:  notifier,
		TTL:       cfg.CartTTL,
		Logger:    logger,
	})

	deps.ProductSvc = productsvc.New(productRepo)
	deps.CartSvc = cartService
	deps.SalesSvc = salessvc.New(salesRepo)
	deps.Watcher = hub

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go cartService.StartSweeper(sweepCtx, cfg.SweepInterval)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
