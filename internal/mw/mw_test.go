package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(rate.Limit(1), 2, time.Minute)

	r := gin.New()
	r.Use(limiter.Middleware(ClientIP))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	send := func(remoteAddr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = remoteAddr
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234"), "buckets are per client")
}

func TestRateLimiter_ReusesBucket(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1, time.Minute)
	assert.Same(t, limiter.Limiter("a"), limiter.Limiter("a"))
	assert.NotSame(t, limiter.Limiter("a"), limiter.Limiter("b"))
}

func TestResponseCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rc := NewResponseCache(time.Minute)

	calls := 0
	r := gin.New()
	r.GET("/gyms", rc.Middleware(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/broken", rc.Middleware(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/gyms?q=java")
	assert.JSONEq(t, `{"calls":1}`, first.Body.String())

	second := get("/gyms?q=java")
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))

	other := get("/gyms?q=type")
	assert.JSONEq(t, `{"calls":2}`, other.Body.String())

	rc.Invalidate()
	assert.JSONEq(t, `{"calls":3}`, get("/gyms?q=java").Body.String())

	get("/broken")
	get("/broken")
	assert.Equal(t, 5, calls, "failed responses are not cached")
}
