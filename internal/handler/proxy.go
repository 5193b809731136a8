package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/credibilitycrm/gateway/internal/client"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

var errInvalidJSONBody = errors.New("Invalid JSON body")

// analytics type -> 백엔드 경로
var analyticsPaths = map[string]string{
	"tenant": "/analytics/tenant-stats",
	"ticket": "/analytics/ticket-stats",
}

type forwarder interface {
	Forward(ctx context.Context, fr client.ForwardRequest) (*client.ForwardResponse, error)
}

// ProxyHandler - 대시보드 요청을 백엔드로 그대로 전달 (인증 헤더는 있을 때만 전달)
type ProxyHandler struct {
	upstream forwarder
	log      *zap.Logger
}

func NewProxyHandler(upstream forwarder, log *zap.Logger) *ProxyHandler {
	return &ProxyHandler{upstream: upstream, log: log}
}

// ListAgents godoc
// @Summary List agents
// @Tags proxy
// @Produce json
// @Success 200 {object} object
// @Failure 500 {object} model.ErrorResponse
// @Router /api/agents [get]
func (h *ProxyHandler) ListAgents(c *gin.Context) { h.relay(c, "agents", "/agents", c.Request.URL.RawQuery) }

// CreateAgent godoc
// @Summary Create agent
// @Tags proxy
// @Accept json
// @Produce json
// @Router /api/agents [post]
func (h *ProxyHandler) CreateAgent(c *gin.Context) { h.relay(c, "agents", "/agents", c.Request.URL.RawQuery) }

// ListTenants godoc
// @Summary List tenants
// @Tags proxy
// @Produce json
// @Router /api/tenants [get]
func (h *ProxyHandler) ListTenants(c *gin.Context) { h.relay(c, "tenants", "/tenants", c.Request.URL.RawQuery) }

// CreateTenant godoc
// @Summary Create tenant
// @Tags proxy
// @Accept json
// @Produce json
// @Router /api/tenants [post]
func (h *ProxyHandler) CreateTenant(c *gin.Context) { h.relay(c, "tenants", "/tenants", c.Request.URL.RawQuery) }

// ListTickets godoc
// @Summary List tickets
// @Tags proxy
// @Produce json
// @Router /api/tickets [get]
func (h *ProxyHandler) ListTickets(c *gin.Context) { h.relay(c, "tickets", "/tickets", c.Request.URL.RawQuery) }

// CreateTicket godoc
// @Summary Create ticket
// @Tags proxy
// @Accept json
// @Produce json
// @Router /api/tickets [post]
func (h *ProxyHandler) CreateTicket(c *gin.Context) { h.relay(c, "tickets", "/tickets", c.Request.URL.RawQuery) }

// GetAnalytics godoc
// @Summary Get tenant or ticket statistics
// @Tags proxy
// @Produce json
// @Param type query string true "tenant | ticket"
// @Failure 400 {object} model.ErrorResponse "type이 tenant/ticket이 아니면 백엔드 호출 없이 400 (다른 프록시 오류는 500)"
// @Failure 500 {object} model.ErrorResponse
// @Router /api/analytics [get]
func (h *ProxyHandler) GetAnalytics(c *gin.Context) {
	path, ok := analyticsPaths[c.Query("type")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid analytics type"})
		return
	}
	h.relay(c, "analytics", path, stripQueryParam(c.Request.URL.RawQuery, "type"))
}

func (h *ProxyHandler) relay(c *gin.Context, resource, path, rawQuery string) {
	fr := client.ForwardRequest{
		Resource:      resource,
		Method:        c.Request.Method,
		Path:          path,
		RawQuery:      rawQuery,
		Authorization: c.GetHeader("Authorization"),
	}
	if c.Request.Method == http.MethodPost {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			h.fail(c, resource, err)
			return
		}
		// 파싱 실패는 백엔드로 넘기지 않고 다른 내부 오류와 같은 500 봉투로 응답
		if !json.Valid(body) {
			h.fail(c, resource, errInvalidJSONBody)
			return
		}
		fr.Body = body
	}

	resp, err := h.upstream.Forward(c.Request.Context(), fr)
	if err != nil {
		h.fail(c, resource, err)
		return
	}
	c.Data(resp.Status, "application/json", resp.Body)
}

func (h *ProxyHandler) fail(c *gin.Context, resource string, err error) {
	h.log.Error("Proxy request failed",
		zap.String("resource", resource),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	msg := internalErrorMessage
	var callErr *client.CallError
	if errors.As(err, &callErr) && callErr.Err != nil && callErr.Err.Error() != "" {
		msg = callErr.Err.Error()
	} else if err.Error() != "" {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg})
}

// stripQueryParam - 나머지 파라미터의 순서와 인코딩은 그대로 유지
func stripQueryParam(rawQuery, name string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if key == name {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "&")
}
