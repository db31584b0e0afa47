package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portal's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
	Registrations prometheus.Counter
	Logins        *prometheus.CounterVec
	Adjustments   *prometheus.CounterVec
	AdminUnlocks  *prometheus.CounterVec
	Scans         *prometheus.CounterVec
	CoachTips     *prometheus.CounterVec
}

// NewMetrics registers all collectors, including Go runtime and process metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "klgt_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "klgt_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "klgt_registrations_total",
			Help: "Successful member registrations.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "klgt_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		Adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "klgt_point_adjustments_total",
			Help: "Point adjustments by kind (award preset or deduct).",
		}, []string{"kind"}),
		AdminUnlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "klgt_admin_unlocks_total",
			Help: "Admin unlock attempts by outcome.",
		}, []string{"outcome"}),
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "klgt_scans_total",
			Help: "Scanned badge payloads by outcome.",
		}, []string{"outcome"}),
		CoachTips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "klgt_coach_tips_total",
			Help: "Coach tip responses by source (generated or fallback).",
		}, []string{"source"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests, m.Latency, m.Registrations, m.Logins,
		m.Adjustments, m.AdminUnlocks, m.Scans, m.CoachTips,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records request count and latency labelled by the matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.Latency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Outcome maps an error to the "ok"/"error" label used by the outcome counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
