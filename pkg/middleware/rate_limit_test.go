package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/tertulia-im/tertulia/pkg/metrics"
)

// resetLimiterStore clears the package-global bucket map. Every request in
// this file shares the httptest client IP, so tests that tune rps/burst must
// start from an empty store or they inherit an earlier test's limiter.
func resetLimiterStore() {
	limiterStore.Range(func(key, _ interface{}) bool {
		limiterStore.Delete(key)
		return true
	})
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	resetLimiterStore()
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2)) // generous rate
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	req := httptest.NewRequest("GET", "/ok", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	req2 := httptest.NewRequest("GET", "/ok", nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusOK, w2.Code)

	// verify metrics incremented for memory limiter
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	resetLimiterStore()
	r := gin.New()
	// very low rate to force rejections
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// first request -> allowed
	rq1 := httptest.NewRequest("GET", "/limited", nil)
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, rq1)
	require.Equal(t, http.StatusOK, w1.Code)

	// immediate second request -> should be rate-limited
	rq2 := httptest.NewRequest("GET", "/limited", nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, rq2)
	require.Equal(t, http.StatusTooManyRequests, w2.Code)

	// wait for half a second (0.5s) to replenish one token and it should be allowed
	time.Sleep(600 * time.Millisecond)
	rq3 := httptest.NewRequest("GET", "/limited", nil)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, rq3)
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimitMiddleware_KeysByCallerName(t *testing.T) {
	resetLimiterStore()
	r := gin.New()
	r.Use(CallerIdentity())
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	send := func(name string) int {
		rq := httptest.NewRequest("GET", "/u", nil)
		if name != "" {
			rq.Header.Set(CallerHeader, name)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w.Code
	}

	// first request for a name is allowed, the immediate second is not
	require.Equal(t, http.StatusOK, send("ana"))
	require.Equal(t, http.StatusTooManyRequests, send("ana"))

	// a different name has its own bucket
	require.Equal(t, http.StatusOK, send("bruno"))
}
