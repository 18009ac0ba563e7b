package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vybr",
		Subsystem: "booking",
		Name:      "outcomes_total",
		Help:      "Booking flow outcomes by kind.",
	}, []string{"outcome"})

	paymentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vybr",
		Subsystem: "payment",
		Name:      "transitions_total",
		Help:      "Payment attempt state transitions.",
	}, []string{"state"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vybr",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

func BookingOutcome(outcome string) {
	bookingOutcomes.WithLabelValues(outcome).Inc()
}

func PaymentTransition(state string) {
	paymentTransitions.WithLabelValues(state).Inc()
}

func ObserveRequest(route, status string, seconds float64) {
	requestDuration.WithLabelValues(route, status).Observe(seconds)
}
