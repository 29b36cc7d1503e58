package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders placed",
	})

	OrdersApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_approved_total",
		Help: "Total number of orders approved by an admin",
	})

	OrdersRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of orders rejected by an admin",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of orders cancelled by customers",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order operations",
	}, []string{"reason"})

	StockDeductionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_deductions_total",
		Help: "Total number of successful approval stock deductions",
	})

	StockDeductionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_deductions_failed_total",
		Help: "Total number of failed approval stock deductions",
	}, []string{"reason"})

	StockDeductionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_deduction_latency_seconds",
		Help:    "Latency of the approval stock check and deduction",
		Buckets: prometheus.DefBuckets,
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications delivered",
	}, []string{"channel"})

	NotificationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of notification delivery failures",
	}, []string{"channel"})

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
