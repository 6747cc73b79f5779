package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sakura-events/sakura-backend/internal/logging"
)

func TestRequestID_EchoesIncomingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	var fromCtx string
	r := gin.New()
	r.Use(RequestID(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) {
		fromCtx = logging.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", fromCtx)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/ping", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Len(t, rr.Header().Get(HeaderRequestID), 32)
}

func TestMetrics_CountsByRouteAndStatusClass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "sakura")

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects/x", nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] != "/api/projects/:id" || labels["status"] != "4XX" {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				counts[mf.GetName()] = c.GetValue()
			}
			if h := metric.GetHistogram(); h != nil {
				counts[mf.GetName()] = float64(h.GetSampleCount())
			}
		}
	}

	assert.Equal(t, float64(3), counts["sakura_http_requests_total"])
	assert.Equal(t, float64(3), counts["sakura_http_request_duration_seconds"])
}

func TestRateLimiter_RejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.001, 2)

	r := gin.New()
	r.Use(rl.Handler(func(c *gin.Context) string { return c.GetHeader("X-Who") }))
	r.POST("/w", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/w", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method, who string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/w", nil)
		req.Header.Set("X-Who", who)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "a").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "a").Code)

	rr := do(http.MethodPost, "a")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `"success":false`))

	// separate buckets per key, reads are never charged
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "b").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "a").Code)
}

func TestRateLimiter_DisabledWithZeroRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0, 1)

	r := gin.New()
	r.Use(rl.Handler(func(*gin.Context) string { return "k" }))
	r.POST("/w", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/w", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	clk := clock.NewMock()
	rl := NewRateLimiter(1, 2)
	rl.clock, rl.lastSweep = clk, clk.Now()

	rl.limiter("a")
	rl.limiter("b")
	assert.Equal(t, 2, rl.size())

	clk.Add(5 * time.Minute)
	rl.limiter("b")
	assert.Equal(t, 2, rl.size())

	clk.Add(6 * time.Minute)
	rl.limiter("c")
	assert.Equal(t, 2, rl.size(), "a idle past the ttl, b seen 6m ago")

	clk.Add(minIdleTTL)
	rl.limiter("c")
	assert.Equal(t, 1, rl.size())
}
