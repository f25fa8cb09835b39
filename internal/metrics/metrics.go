package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitbetty_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bitbetty_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// GuessSubmissions counts submissions by result: accepted, invalid, conflict, store_error, queue_error
	GuessSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitbetty_guess_submissions_total",
			Help: "Guess submissions by result",
		},
		[]string{"result"},
	)

	// Deliveries counts resolution deliveries by outcome
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitbetty_resolution_deliveries_total",
			Help: "Resolution queue deliveries by outcome",
		},
		[]string{"outcome"},
	)

	// Resolutions counts written resolutions by points awarded
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitbetty_resolutions_total",
			Help: "Resolved guesses by points awarded",
		},
		[]string{"points"},
	)

	OracleFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bitbetty_oracle_unavailable_total",
			Help: "Price lookups that returned no usable price",
		},
	)

	SweptGuesses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bitbetty_swept_guesses_total",
			Help: "Stale unresolved guesses re-enqueued by the sweeper",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bitbetty_queue_depth",
			Help: "Messages held by the resolution queue, visible or in flight",
		},
	)
)

func ObserveResolution(points int) {
	Resolutions.WithLabelValues(strconv.Itoa(points)).Inc()
}

// Middleware collects HTTP request metrics keyed by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		RequestCounter.WithLabelValues(status, method, path).Inc()
		RequestDuration.WithLabelValues(status, method, path).Observe(time.Since(start).Seconds())
	}
}
