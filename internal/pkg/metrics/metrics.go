package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isstrack",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "isstrack",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "isstrack",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Tracker metrics
	PositionsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isstrack",
		Subsystem: "tracker",
		Name:      "positions_ingested_total",
		Help:      "Total positions ingested from the upstream source",
	}, []string{"source"})

	PositionsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "isstrack",
		Subsystem: "tracker",
		Name:      "positions_stored",
		Help:      "Positions currently held in the in-memory history",
	})

	UpstreamPollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "isstrack",
		Subsystem: "tracker",
		Name:      "upstream_poll_duration_seconds",
		Help:      "Duration of upstream position fetches",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	}, []string{"source"})

	UpstreamPollErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isstrack",
		Subsystem: "tracker",
		Name:      "upstream_poll_errors_total",
		Help:      "Total failed upstream position fetches",
	}, []string{"source"})

	// Viewer metrics
	ViewerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isstrack",
		Subsystem: "viewer",
		Name:      "api_requests_total",
		Help:      "Requests made by the viewer to the tracker API",
	}, []string{"endpoint", "result"})

	ViewerConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "isstrack",
		Subsystem: "viewer",
		Name:      "connected",
		Help:      "1 when the viewer considers the tracker API reachable",
	})

	TrailSegments = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "isstrack",
		Subsystem: "viewer",
		Name:      "trail_segments",
		Help:      "Segments currently drawn, including the open one",
	})

	TrailPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "isstrack",
		Subsystem: "viewer",
		Name:      "trail_points",
		Help:      "Points currently drawn across all segments",
	})

	SegmentsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "isstrack",
		Subsystem: "viewer",
		Name:      "segments_evicted_total",
		Help:      "Total closed segments dropped to stay within the limit",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "isstrack",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isstrack",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isstrack",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// SetConnected mirrors the viewer's connection indicator.
func SetConnected(ok bool) {
	if ok {
		ViewerConnected.Set(1)
		return
	}
	ViewerConnected.Set(0)
}
