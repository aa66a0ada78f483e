package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ordersms",
		Name:      "orders_created_total",
		Help:      "Total number of orders persisted.",
	})

	PaymentsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ordersms",
		Name:      "payments_confirmed_total",
		Help:      "Total number of orders transitioned to PAID.",
	})

	BusRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ordersms",
		Name:      "bus_requests_total",
		Help:      "Outbound bus requests by subject and outcome.",
	}, []string{"subject", "outcome"})

	NormalizedFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ordersms",
		Name:      "normalized_failures_total",
		Help:      "Failures converted to the wire envelope, by status.",
	}, []string{"status"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
