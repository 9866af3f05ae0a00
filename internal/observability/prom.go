package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "expenses"

var (
	// bcrypt dominates the auth routes, hence the upper buckets
	httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	dbBuckets   = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2}
)

// Prom holds every collector the API exports. Methods are safe on a nil *Prom
// so stores and middleware can run without metrics.
type Prom struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	DBDuration *prometheus.HistogramVec
	DBErrors   *prometheus.CounterVec

	AuthFailures *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),

		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route template and status.",
			Buckets:   httpBuckets,
		}, []string{"method", "route", "status"}),

		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_in_flight_requests",
			Help:      "Requests currently being served.",
		}),

		DBDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Store operation latency by logical op and outcome (ok, not_found, error).",
			Buckets:   dbBuckets,
		}, []string{"op", "status"}),

		DBErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Store errors by logical op and error class.",
		}, []string{"op", "class"}),

		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Requests rejected by the auth gate, by reason.",
		}, []string{"reason"}),

		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "auth",
			Name:      "profile_cache_lookups_total",
			Help:      "Profile cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}

	reg.MustRegister(
		p.HTTPRequests, p.HTTPDuration, p.HTTPInFlight,
		p.DBDuration, p.DBErrors,
		p.AuthFailures, p.CacheLookups,
	)

	return p
}

// GinHandleMiddleware records request counts and latency labelled by the
// matched route template, so /api/v1/expenses/:id stays one series.
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		p.HTTPInFlight.Inc()
		defer p.HTTPInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		p.HTTPRequests.With(labels).Inc()
		p.HTTPDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// AuthFailure counts a rejection; reason is missing_token, invalid_token,
// unknown_user or lookup_error.
func (p *Prom) AuthFailure(reason string) {
	if p == nil {
		return
	}
	p.AuthFailures.WithLabelValues(reason).Inc()
}

func (p *Prom) CacheLookup(result string) {
	if p == nil {
		return
	}
	p.CacheLookups.WithLabelValues(result).Inc()
}
