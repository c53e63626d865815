// Package metrics exposes Prometheus metrics for the HTTP layer, auth flows,
// payments and the retention job.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records service metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	authEvents       *prometheus.CounterVec
	paymentOrders    *prometheus.CounterVec
	retentionDeleted *prometheus.CounterVec
	retentionRuns    *prometheus.CounterVec
}

// NewCollector registers the service metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusconnect_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campusconnect_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusconnect_auth_events_total",
			Help: "Auth attempts by flow and outcome.",
		}, []string{"flow", "outcome"}),
		paymentOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusconnect_payment_orders_total",
			Help: "Payment orders by outcome.",
		}, []string{"outcome"}),
		retentionDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusconnect_retention_deleted_total",
			Help: "Rows removed by the retention job, by table.",
		}, []string{"table"}),
		retentionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusconnect_retention_runs_total",
			Help: "Retention job runs by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.authEvents,
		c.paymentOrders,
		c.retentionDeleted,
		c.retentionRuns,
	)
	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordAuth counts an auth attempt. flow is signup, login or google_sync.
func (c *Collector) RecordAuth(flow string, ok bool) {
	if c == nil {
		return
	}
	c.authEvents.WithLabelValues(flow, outcome(ok)).Inc()
}

func (c *Collector) RecordPaymentOrder(ok bool) {
	if c == nil {
		return
	}
	c.paymentOrders.WithLabelValues(outcome(ok)).Inc()
}

func (c *Collector) RecordRetention(table string, deleted int64) {
	if c == nil {
		return
	}
	c.retentionDeleted.WithLabelValues(table).Add(float64(deleted))
}

func (c *Collector) RecordRetentionRun(ok bool) {
	if c == nil {
		return
	}
	c.retentionRuns.WithLabelValues(outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Middleware records every request. Errors have not been rendered yet when
// the chain unwinds, so their status is derived the way the error handler does.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperror.HTTPStatus(err)
			}
		}
		route := ctx.Route().Path
		if route == "" || route == "/" {
			route = "unmatched"
		}
		c.RecordHTTPRequest(ctx.Method(), route, status, time.Since(start))
		return err
	}
}

// Handler serves the Prometheus exposition format for gatherer.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
