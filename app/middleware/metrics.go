package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	campaignSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_saves_total",
			Help: "Campaign save attempts partitioned by outcome",
		},
		[]string{"outcome"},
	)

	locationSamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_samples_total",
			Help: "Researcher location samples partitioned by outcome",
		},
		[]string{"outcome"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondent_exports_total",
			Help: "Respondent exports partitioned by format",
		},
		[]string{"format"},
	)
)

// Campaign save outcomes
const (
	SaveOutcomeSaved    = "saved"
	SaveOutcomeInvalid  = "invalid"
	SaveOutcomeConflict = "conflict"
	SaveOutcomeFailed   = "failed"
)

// ObserveCampaignSave counts one campaign save attempt
func ObserveCampaignSave(outcome string) {
	campaignSavesTotal.WithLabelValues(outcome).Inc()
}

// ObserveLocationSample counts one location sample by what happened to it
func ObserveLocationSample(outcome string) {
	locationSamplesTotal.WithLabelValues(outcome).Inc()
}

// ObserveExport counts one respondent export
func ObserveExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		// Call the next handler in the chain
		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
