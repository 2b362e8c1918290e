package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_http_requests_total",
			Help: "Total number of HTTP requests processed by the messenger service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messenger_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	streamActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "messenger_stream_active_connections",
			Help: "Number of active live-stream connections.",
		},
		[]string{"transport"},
	)
	streamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_stream_events_total",
			Help: "Total number of live-stream lifecycle events.",
		},
		[]string{"transport", "event"},
	)
	streamPushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_stream_pushes_total",
			Help: "Total number of event pushes by delivery outcome.",
		},
		[]string{"outcome"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		streamActiveConnections,
		streamEventsTotal,
		streamPushesTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncStreamActive(transport string) {
	streamActiveConnections.WithLabelValues(transport).Inc()
}

func DecStreamActive(transport string) {
	streamActiveConnections.WithLabelValues(transport).Dec()
}

func IncStreamEvent(transport, event string) {
	streamEventsTotal.WithLabelValues(transport, event).Inc()
}

// IncStreamPush records a push outcome: delivered, offline or failed.
func IncStreamPush(outcome string) {
	streamPushesTotal.WithLabelValues(outcome).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
