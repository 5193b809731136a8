package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newMiddlewareRouter(seen *RouteAccess) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(), ClassifyPath())
	r.NoRoute(func(c *gin.Context) {
		*seen = GetRouteAccess(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestSecurityHeadersAndNoCache(t *testing.T) {
	var seen RouteAccess
	r := newMiddlewareRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/tickets", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
	assert.Equal(t, RouteProtected, seen)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/api", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Cache-Control"))
	assert.Equal(t, RoutePublic, seen)
}

func TestStaticPathsSkipMiddleware(t *testing.T) {
	var seen RouteAccess
	r := newMiddlewareRouter(&seen)

	for _, p := range []string{"/_next/static/chunk.js", "/static/logo", "/favicon.ico", "/dashboard/report.pdf"} {
		seen = "unset"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Empty(t, w.Header().Get("X-Frame-Options"), p)
		assert.Empty(t, w.Header().Get("Cache-Control"), p)
		assert.Equal(t, RouteAccess(""), seen, p)
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]RouteAccess{
		"/":               RoutePublic,
		"/login":          RoutePublic,
		"/signup/confirm": RoutePublic,
		"/docs":           RoutePublic,
		"/dashboard":      RouteProtected,
		"/loginx":         RouteProtected,
		"/api/tickets":    RouteProtected,
	}
	for p, want := range tests {
		assert.Equal(t, want, classify(p), p)
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}, true))
	r.GET("/ping", Ping)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGatewayMiddlewaresSecurePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GatewayMiddlewares([]string{"https://app.example.com"})...)
	r.GET("/api/tickets", Ping)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/tickets", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
