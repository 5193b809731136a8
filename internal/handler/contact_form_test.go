package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/credibilitycrm/gateway/internal/notification"
	"github.com/credibilitycrm/gateway/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTicketCreator struct {
	got  []model.TicketCreateRequest
	data string
	err  error
}

func (s *stubTicketCreator) CreateTicket(ctx context.Context, req model.TicketCreateRequest) (model.APIResponse[json.RawMessage], error) {
	s.got = append(s.got, req)
	if s.err != nil {
		return model.Failure[json.RawMessage](s.err.Error()), s.err
	}
	data := json.RawMessage(s.data)
	return model.APIResponse[json.RawMessage]{Success: true, Data: &data}, nil
}

func newContactFormRouter(tickets *stubTicketCreator, store *notification.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := service.NewContactFormService(tickets, store, nil, zap.NewNop())
	RegisterRoutes(r, Handlers{ContactForm: NewContactFormHandler(svc, zap.NewNop())})
	return r
}

func postContactForm(r *gin.Engine, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestContactFormCreatesTicket(t *testing.T) {
	tickets := &stubTicketCreator{data: `{"id":42,"assignedAgent":{"name":"Jordan"}}`}
	store := notification.NewStore(notification.DefaultCapacity)
	r := newContactFormRouter(tickets, store)

	w := postContactForm(r, "/api/webhooks/contact-form?tenantId=3", `{"message":"hi"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": {"id":42,"assignedAgent":{"name":"Jordan"}},
		"message": "Contact form ticket created and assigned to Jordan"
	}`, w.Body.String())

	require.Len(t, tickets.got, 1)
	assert.Equal(t, 3, tickets.got[0].TenantID)
	assert.Equal(t, "Medium", tickets.got[0].Priority)
	assert.Equal(t, "general", tickets.got[0].Category)
	assert.Equal(t, 1, store.UnreadCount())
}

func TestContactFormUnassignedAgent(t *testing.T) {
	r := newContactFormRouter(&stubTicketCreator{data: `{"id":1}`}, notification.NewStore(5))

	w := postContactForm(r, "/api/webhooks/contact-form", `{"tenantId":"8","subject":"Help"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Contact form ticket created and assigned to agent", body["message"])
}

func TestContactFormValidationErrors(t *testing.T) {
	tickets := &stubTicketCreator{}
	r := newContactFormRouter(tickets, notification.NewStore(5))

	tests := []struct {
		name   string
		target string
		body   string
		want   string
	}{
		{"missing tenant", "/api/webhooks/contact-form", `{"message":"hi"}`, "tenantId is required (query parameter or body field)"},
		{"non numeric tenant", "/api/webhooks/contact-form?tenantId=abc", `{"message":"hi"}`, "tenantId is required (query parameter or body field)"},
		{"empty content", "/api/webhooks/contact-form?tenantId=1", `{"message":"","subject":" "}`, "Message or subject is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postContactForm(r, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"success":false,"error":"`+tt.want+`"}`, w.Body.String())
		})
	}
	assert.Empty(t, tickets.got)
}

func TestContactFormMalformedBodyReturns500(t *testing.T) {
	tickets := &stubTicketCreator{}
	r := newContactFormRouter(tickets, notification.NewStore(5))

	for _, body := range []string{`{"message":`, "not json", ""} {
		w := postContactForm(r, "/api/webhooks/contact-form?tenantId=1", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		assert.JSONEq(t, `{"success":false,"error":"Failed to process contact form submission"}`, w.Body.String(), body)
	}
	assert.Empty(t, tickets.got)
}

func TestContactFormBackendFailure(t *testing.T) {
	store := notification.NewStore(5)
	r := newContactFormRouter(&stubTicketCreator{err: errors.New("HTTP error! status: 503")}, store)

	w := postContactForm(r, "/api/webhooks/contact-form?tenantId=1", `{"message":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to process contact form submission"}`, w.Body.String())
	assert.Zero(t, store.UnreadCount())
}
