package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/credibilitycrm/gateway/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contactFormFailureMessage = "Failed to process contact form submission"
	idempotencyHeader         = "Idempotency-Key"
)

type contactFormSubmitter interface {
	Submit(ctx context.Context, in service.ContactFormInput) (*service.ContactFormResult, error)
}

type ContactFormHandler struct {
	svc contactFormSubmitter
	log *zap.Logger
}

func NewContactFormHandler(svc contactFormSubmitter, log *zap.Logger) *ContactFormHandler {
	return &ContactFormHandler{svc: svc, log: log}
}

// Submit godoc
// @Summary Receive contact form submission
// @Description 외부 웹사이트 문의 폼을 티켓으로 생성
// @Tags webhooks
// @Accept json
// @Produce json
// @Param tenantId query int false "Tenant ID (body보다 우선)"
// @Param Idempotency-Key header string false "중복 전송 방지 키"
// @Param request body model.ContactFormPayload true "Contact form payload"
// @Success 201 {object} object
// @Success 200 {object} object
// @Failure 400 {object} model.ErrorResponse "tenantId 또는 message/subject 누락"
// @Failure 500 {object} model.ErrorResponse "JSON 파싱 실패 또는 티켓 생성 실패"
// @Router /api/webhooks/contact-form [post]
func (h *ContactFormHandler) Submit(c *gin.Context) {
	var payload model.ContactFormPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// 파싱 실패는 프록시 POST와 같이 500 실패 경로로 보낸다
		h.log.Error("Failed to process contact form submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": contactFormFailureMessage})
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), service.ContactFormInput{
		QueryTenantID:  c.Query("tenantId"),
		Payload:        payload,
		UserAgent:      c.GetHeader("User-Agent"),
		Referer:        c.GetHeader("Referer"),
		IdempotencyKey: c.GetHeader(idempotencyHeader),
	})
	if err != nil {
		if errors.Is(err, service.ErrTenantRequired) || errors.Is(err, service.ErrMessageRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		h.log.Error("Failed to process contact form submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": contactFormFailureMessage})
		return
	}

	if res.Duplicate {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Duplicate submission ignored"})
		return
	}

	agent := res.AgentName
	if agent == "" {
		agent = "agent"
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    res.Data,
		"message": "Contact form ticket created and assigned to " + agent,
	})
}
