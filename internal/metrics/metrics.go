package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "solrent"

var (
	// SecurityEvents counts recorded security events by type and severity.
	SecurityEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_events_total",
		Help:      "Security events recorded by the monitor.",
	}, []string{"type", "severity"})

	// ValidationFailures counts rejected fields per operation.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Field validation rejections.",
	}, []string{"operation", "field"})

	// RateLimitRejections counts denied attempts per operation key prefix.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Attempts denied by the fixed-window rate limiter.",
	}, []string{"operation"})

	// ListingsCreated counts listings that reached the record store.
	ListingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Listings created.",
	})

	// RentalsCreated counts successful rental transitions.
	RentalsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rentals_created_total",
		Help:      "Rentals created.",
	})

	// RentalsReturned counts successful return transitions.
	RentalsReturned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rentals_returned_total",
		Help:      "Rentals returned.",
	})

	// EscrowCalls counts escrow authority invocations by operation and outcome.
	EscrowCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "escrow_calls_total",
		Help:      "Escrow authority calls by operation and outcome.",
	}, []string{"operation", "status"})
)
