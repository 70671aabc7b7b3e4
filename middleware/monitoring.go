package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// httpMetrics is the set of series MonitorMiddleware records for each request.
type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	denied   *prometheus.CounterVec
}

func newHTTPMetrics() *httpMetrics {
	return &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ejournal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, by route template, method and status code",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ejournal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving a request, by route template and method",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"route", "method"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ejournal",
			Subsystem: "auth",
			Name:      "denied_total",
			Help:      "Requests answered 401 or 403",
		}, []string{"reason"}),
	}
}

func (m *httpMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.latency, m.denied}
}

var deniedReasons = map[int]string{
	http.StatusUnauthorized: "unauthenticated",
	http.StatusForbidden:    "forbidden",
}

func (m *httpMetrics) observe(r *http.Request, code int, elapsed time.Duration) {
	route := routeLabel(r)
	m.requests.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
	if reason, ok := deniedReasons[code]; ok {
		m.denied.WithLabelValues(reason).Inc()
	}
}

func (m *httpMetrics) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		m.observe(r, rec.status, time.Since(began))
	})
}

var serverMetrics = newHTTPMetrics()

// InitPrometheus registers the HTTP metrics plus any extra collectors. Call
// this once from main.go.
func InitPrometheus(extra ...prometheus.Collector) {
	prometheus.MustRegister(append(serverMetrics.collectors(), extra...)...)
}

// routeLabel uses the mux path template so /journal/entries/{date} is one
// series rather than one per date.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// MonitorMiddleware records count, latency and auth denials of every request.
// Register it with Router.Use so the route template is known.
func MonitorMiddleware(next http.Handler) http.Handler {
	return serverMetrics.wrap(next)
}

// BasicAuthMiddleware protects /metrics. With no user configured the
// endpoint is closed.
func BasicAuthMiddleware(metricsUser, metricsPass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()

			if !ok || metricsUser == "" ||
				subtle.ConstantTimeCompare([]byte(user), []byte(metricsUser)) != 1 ||
				subtle.ConstantTimeCompare([]byte(pass), []byte(metricsPass)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder keeps the first status code a handler sends. A handler
// that writes a body without WriteHeader has answered 200.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }
