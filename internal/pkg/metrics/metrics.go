package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "artschool"

// Reservation outcomes.
const (
	OutcomeReserved   = "reserved"
	OutcomeNoCapacity = "no_capacity"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

var (
	Reservations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "reservations_total", Help: "Seat reservation attempts by outcome",
	}, []string{"outcome"})
	Cancellations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "enrollment_cancellations_total", Help: "Cancelled enrollments",
	})
	Payments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "payments_total", Help: "Finalized payments by enrollment deletion outcome",
	}, []string{"enrollment_deleted"})
	ReviewTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "review_transitions_total", Help: "Class status changes that were archived",
	}, []string{"status"})
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "cache_lookups_total", Help: "Catalog cache lookups",
	}, []string{"key", "result"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(Reservations, Cancellations, Payments, ReviewTransitions, CacheLookups, HTTPDuration)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveReservation(outcome string) { Reservations.WithLabelValues(outcome).Inc() }

func ObserveCancellation() { Cancellations.Inc() }

func ObservePayment(enrollmentDeleted bool) {
	label := "false"
	if enrollmentDeleted {
		label = "true"
	}
	Payments.WithLabelValues(label).Inc()
}

func ObserveReviewTransition(status string) { ReviewTransitions.WithLabelValues(status).Inc() }

func ObserveCacheLookup(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(key, result).Inc()
}

func ObserveHTTP(method, route, status string, d time.Duration) {
	HTTPDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
