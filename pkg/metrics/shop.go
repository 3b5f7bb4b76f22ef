package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the order creation flow, transaction included
	OrderCreateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_order_create_latency_seconds",
		Help:    "Latency of order creation including the stock transaction",
		Buckets: prometheus.DefBuckets,
	})

	// Orders created, labelled by outcome
	OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_orders_created_total",
		Help: "Total number of order creation attempts by outcome",
	}, []string{"outcome"})

	// Latency of report/dashboard computations
	ReportLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_report_latency_seconds",
		Help:    "Latency of reporting queries by report type",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
)

func Init() {
	prometheus.MustRegister(
		OrderCreateLatency,
		OrdersCreatedTotal,
		ReportLatency,
	)
}
