// Package metrics provides Prometheus instrumentation for the Postro
// backend: cart operation counters, watcher gauges, and sweep totals.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CartOperations counts cart mutations, labeled by operation
	// ("add", "update", "remove", "touch") and outcome ("ok", "error").
	CartOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postro_cart_operations_total",
		Help: "Total number of cart mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	// CartWatchers tracks the current number of live cart subscriptions.
	CartWatchers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "postro_cart_watchers",
		Help: "Current number of live cart watch subscriptions",
	})

	// CartsSwept counts expired carts released by the sweeper.
	CartsSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postro_carts_swept_total",
		Help: "Total number of expired carts released by the sweeper",
	})

	// SweepErrors counts per-cart sweep failures.
	SweepErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postro_sweep_errors_total",
		Help: "Total number of per-cart sweep failures",
	})

	// SalesLogged counts sale log entries appended.
	SalesLogged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postro_sales_logged_total",
		Help: "Total number of sale log entries written",
	})

	// OutOfStockRejections counts adds rejected because stock ran out.
	OutOfStockRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postro_out_of_stock_rejections_total",
		Help: "Total number of cart adds rejected for missing stock",
	})
)

func init() {
	prometheus.MustRegister(
		CartOperations,
		CartWatchers,
		CartsSwept,
		SweepErrors,
		SalesLogged,
		OutOfStockRejections,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
