package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/credibilitycrm/gateway/internal/client"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeForwarder struct {
	got  []client.ForwardRequest
	resp *client.ForwardResponse
	err  error
}

func (f *fakeForwarder) Forward(ctx context.Context, fr client.ForwardRequest) (*client.ForwardResponse, error) {
	f.got = append(f.got, fr)
	return f.resp, f.err
}

func newProxyRouter(fwd *fakeForwarder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Handlers{Proxy: NewProxyHandler(fwd, zap.NewNop())})
	return r
}

func TestProxyGetRelaysQueryAndStatus(t *testing.T) {
	fwd := &fakeForwarder{resp: &client.ForwardResponse{Status: http.StatusOK, Body: []byte(`{"success":true,"data":[]}`)}}
	r := newProxyRouter(fwd)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tickets?tenantId=5&status=open", nil)
	req.Header.Set("Authorization", "Bearer abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
	require.Len(t, fwd.got, 1)
	assert.Equal(t, "/tickets", fwd.got[0].Path)
	assert.Equal(t, "tenantId=5&status=open", fwd.got[0].RawQuery)
	assert.Equal(t, "Bearer abc", fwd.got[0].Authorization)
	assert.Equal(t, http.MethodGet, fwd.got[0].Method)
}

func TestProxyPostForwardsBodyAndUpstreamStatus(t *testing.T) {
	fwd := &fakeForwarder{resp: &client.ForwardResponse{Status: http.StatusUnprocessableEntity, Body: []byte(`{"success":false,"error":"name required"}`)}}
	r := newProxyRouter(fwd)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/agents", bytes.NewBufferString(`{"email":"a@b.c"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"name required"}`, w.Body.String())
	require.Len(t, fwd.got, 1)
	assert.Equal(t, `{"email":"a@b.c"}`, string(fwd.got[0].Body))
	assert.Empty(t, fwd.got[0].Authorization)
}

func TestProxyAnalyticsTypeMapping(t *testing.T) {
	fwd := &fakeForwarder{resp: &client.ForwardResponse{Status: http.StatusOK, Body: []byte(`{}`)}}
	r := newProxyRouter(fwd)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics?range=7d&type=ticket&tenantId=2", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics?type=tenant", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, fwd.got, 2)
	assert.Equal(t, "/analytics/ticket-stats", fwd.got[0].Path)
	assert.Equal(t, "range=7d&tenantId=2", fwd.got[0].RawQuery)
	assert.Equal(t, "/analytics/tenant-stats", fwd.got[1].Path)
	assert.Empty(t, fwd.got[1].RawQuery)
}

func TestProxyAnalyticsInvalidType(t *testing.T) {
	fwd := &fakeForwarder{}
	r := newProxyRouter(fwd)

	for _, target := range []string{"/api/analytics", "/api/analytics?type=agent"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid analytics type"}`, w.Body.String())
	}
	assert.Empty(t, fwd.got)
}

func TestProxyFailureReturns500(t *testing.T) {
	fwd := &fakeForwarder{err: &client.CallError{Kind: client.NetworkFailure, Err: errors.New("connection refused")}}
	r := newProxyRouter(fwd)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tenants", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"connection refused"}`, w.Body.String())
}

func TestProxyPostRejectsMalformedJSON(t *testing.T) {
	fwd := &fakeForwarder{resp: &client.ForwardResponse{Status: http.StatusCreated, Body: []byte(`{"success":true}`)}}
	r := newProxyRouter(fwd)

	for _, body := range []string{"not json", "", `{"name":`} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/tenants", bytes.NewBufferString(body)))
		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		assert.JSONEq(t, `{"success":false,"error":"Invalid JSON body"}`, w.Body.String(), body)
	}
	assert.Empty(t, fwd.got)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/tenants", bytes.NewBufferString(`{ "name" : "Acme" }`)))
	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, fwd.got, 1)
	assert.Equal(t, `{ "name" : "Acme" }`, string(fwd.got[0].Body))
}

func TestStripQueryParam(t *testing.T) {
	assert.Equal(t, "a=1&b=2", stripQueryParam("type=x&a=1&b=2", "type"))
	assert.Equal(t, "a=1&a=2", stripQueryParam("a=1&type=x&a=2&type=y", "type"))
	assert.Equal(t, "", stripQueryParam("", "type"))
	assert.Equal(t, "q=%20x", stripQueryParam("q=%20x&t%79pe=1", "type"))
}
