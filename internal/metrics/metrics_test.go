package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				return m
			}
		}
	}
	return nil
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordAuth("login", true)
	c.RecordPaymentOrder(false)
	c.RecordRetention("updates", 3)
	c.RecordRetentionRun(true)
	c.RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
}

func TestRecordRetention(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRetention("updates", 2)
	c.RecordRetention("updates", 3)

	m := findMetric(t, reg, "campusconnect_retention_deleted_total", map[string]string{"table": "updates"})
	require.NotNil(t, m)
	assert.Equal(t, float64(5), m.GetCounter().GetValue())
}

func TestRecordAuth(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuth("login", false)

	m := findMetric(t, reg, "campusconnect_auth_events_total", map[string]string{"flow": "login", "outcome": "failure"})
	require.NotNil(t, m)
	assert.Equal(t, float64(1), m.GetCounter().GetValue())
}

func TestMiddleware_RecordsErrorStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	app := fiber.New()
	app.Use(c.Middleware())
	app.Get("/api/profile/me", func(ctx *fiber.Ctx) error {
		return apperror.NotFound("Profile not found")
	})
	app.Get("/metrics", Handler(reg))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/profile/me", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	m := findMetric(t, reg, "campusconnect_http_requests_total", map[string]string{
		"route": "/api/profile/me", "status_code": "404",
	})
	require.NotNil(t, m)
	assert.Equal(t, float64(1), m.GetCounter().GetValue())

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "campusconnect_http_requests_total")
}
