package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus owns a private registry scraped on /metrics.
type Prometheus struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

// NewPrometheus registers the HTTP and gateway collectors under namespace.
func NewPrometheus(namespace string) *Prometheus {
	registry := prometheus.NewRegistry()
	p := &Prometheus{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency by route and method.", Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "payments", Name: "gateway_notifications_total",
			Help: "Gateway notifications by outcome.",
		}, []string{"outcome"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.requests, p.latency, p.notifications,
	)
	return p
}

// Middleware records every request against its route template.
func (p *Prometheus) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		p.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		p.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// ObserveGatewayNotification counts one webhook delivery.
func (p *Prometheus) ObserveGatewayNotification(outcome string) {
	p.notifications.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
