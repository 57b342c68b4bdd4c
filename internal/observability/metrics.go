package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	sessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ogp",
			Subsystem: "session",
			Name:      "active",
			Help:      "Currently open protocol sessions.",
		},
		[]string{"role"},
	)
	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ogp",
			Subsystem: "session",
			Name:      "opened_total",
			Help:      "Protocol sessions opened since start.",
		},
		[]string{"role"},
	)
	sessionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ogp",
			Subsystem: "session",
			Name:      "errors_total",
			Help:      "Session-level errors by kind.",
		},
		[]string{"kind"},
	)
	framesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ogp",
			Subsystem: "wire",
			Name:      "frames_sent_total",
			Help:      "Frames written to the transport.",
		},
	)
	framesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ogp",
			Subsystem: "wire",
			Name:      "frames_received_total",
			Help:      "Complete frames read from the transport.",
		},
	)
	bytesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ogp",
			Subsystem: "wire",
			Name:      "payload_bytes_sent_total",
			Help:      "Payload bytes written to the transport.",
		},
	)
	bytesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ogp",
			Subsystem: "wire",
			Name:      "payload_bytes_received_total",
			Help:      "Payload bytes read from the transport.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ogp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ogp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			sessionsActive,
			sessionsTotal,
			sessionErrors,
			framesSent,
			framesReceived,
			bytesSent,
			bytesReceived,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordSessionOpened(role string) {
	RegisterMetrics()
	sessionsTotal.WithLabelValues(role).Inc()
	sessionsActive.WithLabelValues(role).Inc()
}

func RecordSessionClosed(role string) {
	RegisterMetrics()
	sessionsActive.WithLabelValues(role).Dec()
}

func RecordSessionError(kind string) {
	RegisterMetrics()
	sessionErrors.WithLabelValues(kind).Inc()
}

func RecordFrameSent(payloadBytes int) {
	RegisterMetrics()
	framesSent.Inc()
	bytesSent.Add(float64(payloadBytes))
}

func RecordFrameReceived(payloadBytes int) {
	RegisterMetrics()
	framesReceived.Inc()
	bytesReceived.Add(float64(payloadBytes))
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
