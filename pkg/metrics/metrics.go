package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments for the API.
type Metrics struct {
	GraphQLRequests prometheus.Counter
	TripsBooked     prometheus.Counter
	TripsCancelled  prometheus.Counter
	Errors          *prometheus.CounterVec
}

// New registers and returns the service metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		GraphQLRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_requests_total",
			Help:      "Total GraphQL requests handled",
		}),
		TripsBooked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_booked_total",
			Help:      "Total launches booked across all users",
		}),
		TripsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_cancelled_total",
			Help:      "Total trip cancellations",
		}),
		Errors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total errors by operation",
		}, []string{"operation"}),
	}
}
