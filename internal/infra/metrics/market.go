package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(opportunitiesTotal, buyOrdersTotal)
}

var (
	opportunitiesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "opportunities_recorded_total",
			Help: "Total number of first-time-creator opportunities recorded.",
		},
	)

	buyOrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buy_orders_total",
			Help: "Buy orders by outcome (placed/rejected/error/skipped).",
		},
		[]string{"outcome"},
	)
)

func IncOpportunity() { opportunitiesTotal.Inc() }

func IncBuyOrder(outcome string) {
	buyOrdersTotal.WithLabelValues(norm(outcome)).Inc()
}
