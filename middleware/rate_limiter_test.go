package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func hitFrom(router *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Real-IP", ip)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitExhaustsPerClientBudget(t *testing.T) {
	router := newLimitedRouter()

	for i := 0; i < requestsPerMinute; i++ {
		require.Equal(t, http.StatusOK, hitFrom(router, "203.0.113.7"), "request %d", i)
	}
	require.Equal(t, http.StatusTooManyRequests, hitFrom(router, "203.0.113.7"))
}

func TestRateLimitIsolatesClients(t *testing.T) {
	router := newLimitedRouter()

	for i := 0; i < requestsPerMinute+1; i++ {
		hitFrom(router, "203.0.113.8")
	}
	require.Equal(t, http.StatusOK, hitFrom(router, "203.0.113.9"))
}
