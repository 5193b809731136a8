package handler

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

const routeAccessKey = "route_access"

type RouteAccess string

const (
	RoutePublic    RouteAccess = "public"
	RouteProtected RouteAccess = "protected"
)

var (
	staticPrefixes  = []string{"/_next/", "/static/"}
	noCachePrefixes = []string{"/dashboard", "/login", "/signup"}
	publicPrefixes  = []string{"/login", "/signup", "/docs"}
)

// GatewayMiddlewares - 보안 헤더를 CORS보다 먼저 둔다. CORS preflight는 바로 중단되므로
// 순서가 바뀌면 OPTIONS 응답에 보안 헤더가 빠진다
func GatewayMiddlewares(allowedOrigins []string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		SecurityHeaders(),
		ClassifyPath(),
		CORSMiddleware(allowedOrigins, true),
	}
}

// SecurityHeaders - 정적 자원을 제외한 모든 응답에 보안 헤더, 인증 관련 페이지에는 no-cache 헤더
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if isStaticPath(p) {
			c.Next()
			return
		}

		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")

		if matchesAny(p, noCachePrefixes) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}

// ClassifyPath - 경로를 public/protected로 분류해 context에 저장만 한다 (차단/리다이렉트 없음)
func ClassifyPath() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if isStaticPath(p) {
			c.Next()
			return
		}
		c.Set(routeAccessKey, classify(p))
		c.Next()
	}
}

// GetRouteAccess - ClassifyPath가 적용되지 않은 요청은 ""
func GetRouteAccess(c *gin.Context) RouteAccess {
	if value, ok := c.Get(routeAccessKey); ok {
		if access, ok := value.(RouteAccess); ok {
			return access
		}
	}
	return ""
}

func classify(p string) RouteAccess {
	if p == "/" || matchesAny(p, publicPrefixes) {
		return RoutePublic
	}
	return RouteProtected
}

func isStaticPath(p string) bool {
	if p == "/favicon.ico" {
		return true
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return path.Ext(p) != ""
}

// matchesAny - prefix 자체 또는 그 하위 경로만 매칭 (/dashboards는 /dashboard에 매칭되지 않음)
func matchesAny(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key")
				c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
