package broker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brokersim",
			Subsystem: "broker",
			Name:      "orders_placed_total",
			Help:      "Orders accepted by the broker, by order kind",
		},
		[]string{"kind"},
	)

	ordersExecuted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "brokersim",
			Subsystem: "broker",
			Name:      "orders_executed_total",
			Help:      "Market orders executed against the exchange",
		},
	)

	// executionFailures makes the post-dispatch consistency gap observable:
	// the order has left its queue but the trade or the account update failed.
	executionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brokersim",
			Subsystem: "broker",
			Name:      "execution_failures_total",
			Help:      "Dispatched orders whose execution or settlement failed, by stage",
		},
		[]string{"stage"},
	)
)
