package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are registered per server so tests can build several.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sessions *prometheus.CounterVec
	moves    *prometheus.CounterVec
	attempts prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiveletters_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiveletters_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}, []string{"route"}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiveletters_sessions_total",
			Help: "Sessions by how they started or ended",
		}, []string{"event"}),
		moves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiveletters_moves_total",
			Help: "Session moves by direction",
		}, []string{"direction"}),
		attempts: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fiveletters_solved_attempts",
			Help:    "Guesses needed by completed sessions",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 10},
		}),
	}
}

// instrument records count and latency per chi route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
