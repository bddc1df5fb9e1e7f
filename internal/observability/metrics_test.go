package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/user", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/user", "GET", 200, 20*time.Millisecond)
	m.RecordError("/auth/login", "POST", "UNAUTHORIZED")
	m.RecordAuthAttempt("login", true)
	m.RecordAuthAttempt("login", false)
	m.RecordGuardDecision("admin", "redirect")
	m.SetActiveSessions(3)

	assert.Equal(t, 2.0, gathered(t, reg, "gym_http_requests_total", map[string]string{"route": "/user", "method": "GET", "status": "200"}))
	assert.Equal(t, 1.0, gathered(t, reg, "gym_http_errors_total", map[string]string{"code": "UNAUTHORIZED"}))
	assert.Equal(t, 1.0, gathered(t, reg, "gym_auth_attempts_total", map[string]string{"op": "login", "result": "success"}))
	assert.Equal(t, 1.0, gathered(t, reg, "gym_auth_attempts_total", map[string]string{"op": "login", "result": "failure"}))
	assert.Equal(t, 1.0, gathered(t, reg, "gym_guard_decisions_total", map[string]string{"gate": "admin", "outcome": "redirect"}))
	assert.Equal(t, 3.0, gathered(t, reg, "gym_active_sessions", nil))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAuthAttempt("login", true)
		m.RecordGuardDecision("auth", "allow")
		m.SetActiveSessions(1)
	})
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RecordAuthAttempt("signup", true)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gym_auth_attempts_total{op="signup",result="success"} 1`)
}

func TestRequestLogger_RecordsFinalStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/plans", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTeapot)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/plans", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, 1.0, gathered(t, reg, "gym_http_requests_total", map[string]string{"route": "/plans", "status": "418"}))
}

// gathered returns the value of the first counter or gauge named name whose labels include want.
func gathered(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range mf.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			if metric.GetCounter() != nil {
				return metric.GetCounter().GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, want)
	return 0
}
