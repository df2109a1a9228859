package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	tasksGenerated *prometheus.CounterVec
	pointsEarned   prometheus.Counter
	pointsRedeemed prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deadliner",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "deadliner",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tasksGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deadliner",
			Name:      "tasks_generated_total",
			Help:      "Study tasks generated, by assignment type.",
		}, []string{"assignment_type"}),
		pointsEarned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deadliner",
			Name:      "points_earned_total",
			Help:      "Points credited from timer sessions.",
		}),
		pointsRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deadliner",
			Name:      "points_redeemed_total",
			Help:      "Points spent on reward redemptions.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.tasksGenerated,
		m.pointsEarned,
		m.pointsRedeemed,
	)
	return m
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The recording methods are no-ops on a nil *Metrics.

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) TasksGenerated(assignmentType string, n int) {
	if m == nil {
		return
	}
	m.tasksGenerated.WithLabelValues(assignmentType).Add(float64(n))
}

func (m *Metrics) PointsEarned(n int) {
	if m != nil && n > 0 {
		m.pointsEarned.Add(float64(n))
	}
}

func (m *Metrics) PointsRedeemed(n int) {
	if m != nil && n > 0 {
		m.pointsRedeemed.Add(float64(n))
	}
}
