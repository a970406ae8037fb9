// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kalavedi"

var (
	requestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests processed",
	}, []string{"method", "route", "status"})

	latencyHist = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration submissions by outcome",
	}, []string{"outcome"})

	duplicateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_checks_total",
		Help:      "Duplicate registration checks by result",
	}, []string{"result"})

	statusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "member_status_changes_total",
		Help:      "Admin status changes by target status",
	}, []string{"status"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	latencyHist.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registration outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

func ObserveRegistration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

// ObserveDuplicateCheck records a check result: "clear", "email", "phoneNumber" or "error".
func ObserveDuplicateCheck(result string) {
	duplicateChecks.WithLabelValues(result).Inc()
}

func ObserveStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus /metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
