package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors exposed at /metrics.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "servicos",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servicos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "servicos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	reviewModerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servicos",
			Subsystem: "reviews",
			Name:      "moderations_total",
			Help:      "Admin moderation decisions by action.",
		},
		[]string{"action"},
	)

	reviewsHeld = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servicos",
			Subsystem: "reviews",
			Name:      "held_total",
			Help:      "Reviews moved out of approved by the automatic rules.",
		},
		[]string{"status"},
	)

	maintenanceRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "servicos",
			Subsystem: "maintenance",
			Name:      "rejected_requests_total",
			Help:      "Requests answered with 503 by the maintenance gate.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servicos",
			Subsystem: "realtime",
			Name:      "notifications_total",
			Help:      "Realtime notifications by transport and outcome.",
		},
		[]string{"transport", "outcome"},
	)

	cleanupRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servicos",
			Subsystem: "worker",
			Name:      "job_runs_total",
			Help:      "Scheduled job executions.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reviewModerations,
		reviewsHeld,
		maintenanceRejections,
		notifications,
		cleanupRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RequestStarted() {
	httpInFlight.Inc()
}

func RequestFinished(method, route string, status int, elapsed time.Duration) {
	httpInFlight.Dec()
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordModeration(action string) {
	reviewModerations.WithLabelValues(action).Inc()
}

func RecordReviewHeld(status string) {
	reviewsHeld.WithLabelValues(status).Inc()
}

func RecordMaintenanceRejection() {
	maintenanceRejections.Inc()
}

func RecordNotification(transport string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	notifications.WithLabelValues(transport, outcome).Inc()
}

func RecordJobRun(job string, err error) {
	cleanupRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
}
