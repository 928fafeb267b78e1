package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devtrack_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devtrack_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	notificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devtrack_notifications_sent_total",
		Help: "Push notifications sent, by trigger kind.",
	}, []string{"trigger"})

	notificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devtrack_notification_failures_total",
		Help: "Failed push deliveries, by trigger kind.",
	}, []string{"trigger"})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "devtrack_reminder_sweep_duration_seconds",
		Help:    "Duration of full reminder sweeps.",
		Buckets: prometheus.DefBuckets,
	})
)

// Middleware records request counts and latencies per route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, route).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func NotificationSent(trigger string) {
	notificationsSentTotal.WithLabelValues(trigger).Inc()
}

func NotificationFailed(trigger string) {
	notificationFailuresTotal.WithLabelValues(trigger).Inc()
}

func ObserveSweep(d time.Duration) {
	sweepDuration.Observe(d.Seconds())
}
