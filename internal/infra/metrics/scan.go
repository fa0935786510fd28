package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		scanCyclesTotal,
		scanItemsProcessedTotal,
		marketIndexErrorsTotal,
		marketIndexLatencyMs,
	)
}

var (
	scanCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_scan_cycles_total",
			Help: "Total number of per-user scan cycles executed.",
		},
	)

	scanItemsProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_items_processed_total",
			Help: "Total number of new items evaluated across all users.",
		},
	)

	marketIndexErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_index_errors_total",
			Help: "Market-index API failures by endpoint.",
		},
		[]string{"endpoint"},
	)

	marketIndexLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_index_latency_ms",
			Help:    "Market-index API call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"endpoint", "success"},
	)
)

func IncScanCycle() { scanCyclesTotal.Inc() }

func AddItemsProcessed(n int) { scanItemsProcessedTotal.Add(float64(n)) }

func IncMarketIndexError(endpoint string) {
	marketIndexErrorsTotal.WithLabelValues(norm(endpoint)).Inc()
}

func ObserveMarketIndexCall(endpoint string, latencyMs int64, success bool) {
	marketIndexLatencyMs.WithLabelValues(norm(endpoint), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
