// internal/utils/metrics.go
package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Total number of committed orders",
	})

	OrdersReplayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_replayed_total",
		Help: "Checkout submissions answered from an existing idempotency key",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_failed_total",
		Help: "Total number of rejected or failed checkouts",
	}, []string{"reason"})

	OrderNumberCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_number_collisions_total",
		Help: "Order number unique constraint hits that triggered a retry",
	})

	OrderPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_placement_latency_seconds",
		Help:    "Latency of the order placement transaction",
		Buckets: prometheus.DefBuckets,
	})

	StockUnitsSoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stock_units_sold_total",
		Help: "Units decremented from product stock by committed orders",
	})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_auth_failures_total",
		Help: "Rejected logins and session checks",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
