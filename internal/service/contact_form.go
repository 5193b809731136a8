// 문의 폼 웹훅 처리 비즈니스 로직 정의
//
// 처리 흐름:
//  1. tenantId 확인 (query 우선, 없으면 body)
//  2. message 또는 subject 필수 확인
//  3. Idempotency-Key 중복 확인 (Redis 설정 시)
//  4. 티켓 생성 요청 구조체로 변환
//  5. APIClient.CreateTicket으로 백엔드에 생성 요청
//  6. 대시보드 알림 생성 (+ Slack 설정 시 지원팀 채널 알림)

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/credibilitycrm/gateway/internal/metrics"
	"github.com/credibilitycrm/gateway/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultPriority = "Medium"
	DefaultCategory = "general"

	contactFormSource  = "contact_form"
	contactFormChannel = "web"
)

var (
	ErrTenantRequired  = errors.New("tenantId is required (query parameter or body field)")
	ErrMessageRequired = errors.New("Message or subject is required")
)

// ticketCreator - 백엔드 티켓 생성 인터페이스 (client.APIClient)
type ticketCreator interface {
	CreateTicket(ctx context.Context, req model.TicketCreateRequest) (model.APIResponse[json.RawMessage], error)
}

// notifier - 알림 저장소 인터페이스 (notification.Store)
type notifier interface {
	Create(typ model.NotificationType, title, message, actionURL string) model.Notification
}

// ticketAlerter - 지원팀 채널 알림 인터페이스 (client.SlackClient)
type ticketAlerter interface {
	SendTicketAlert(ctx context.Context, req model.TicketCreateRequest, agent string) error
}

// Claim은 처음 보는 key면 true, Release는 실패한 요청의 key를 되돌린다
type idempotencyStore interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type ContactFormInput struct {
	QueryTenantID  string
	Payload        model.ContactFormPayload
	UserAgent      string
	Referer        string
	IdempotencyKey string
}

type ContactFormResult struct {
	Request   model.TicketCreateRequest
	Data      json.RawMessage
	AgentName string
	Duplicate bool
}

type ContactFormService struct {
	tickets     ticketCreator
	notifier    notifier
	idempotency idempotencyStore
	alerter     ticketAlerter
	log         *zap.Logger
	now         func() time.Time
}

// idempotency가 nil이면 중복 제거를 하지 않는다
func NewContactFormService(tickets ticketCreator, notifier notifier, idempotency idempotencyStore, log *zap.Logger) *ContactFormService {
	return &ContactFormService{
		tickets:     tickets,
		notifier:    notifier,
		idempotency: idempotency,
		log:         log,
		now:         time.Now,
	}
}

// WithAlerter - 티켓 생성 성공 시 추가로 알릴 채널 설정
func (s *ContactFormService) WithAlerter(alerter ticketAlerter) *ContactFormService {
	s.alerter = alerter
	return s
}

func (s *ContactFormService) Submit(ctx context.Context, in ContactFormInput) (*ContactFormResult, error) {
	req, err := s.BuildTicketRequest(in)
	if err != nil {
		metrics.ContactFormTickets.WithLabelValues("invalid").Inc()
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" && s.idempotency != nil {
		fresh, err := s.idempotency.Claim(ctx, key)
		if err != nil {
			// Redis 장애 시에도 티켓 생성은 계속 진행
			s.log.Warn("Failed to check idempotency key", zap.String("key", key), zap.Error(err))
		} else if !fresh {
			s.log.Info("Skipping duplicate contact form submission", zap.String("key", key))
			metrics.ContactFormTickets.WithLabelValues("duplicate").Inc()
			return &ContactFormResult{Request: req, Duplicate: true}, nil
		}
	}

	resp, err := s.tickets.CreateTicket(ctx, req)
	if err == nil && !resp.Success {
		err = fmt.Errorf("backend rejected ticket: %s", resp.Error)
	}
	if err != nil {
		s.releaseKey(ctx, key)
		metrics.ContactFormTickets.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	result := &ContactFormResult{Request: req}
	if resp.Data != nil {
		result.Data = *resp.Data
		var assignment model.TicketAssignment
		if err := json.Unmarshal(*resp.Data, &assignment); err == nil {
			result.AgentName = assignment.AgentName()
		}
	}

	s.notifier.Create(
		model.NotificationSuccess,
		"New contact form ticket",
		fmt.Sprintf("%s: %s", req.Customer, req.Title),
		"/dashboard/tickets",
	)
	if s.alerter != nil {
		// 알림 실패는 티켓 생성 결과에 영향을 주지 않음
		if err := s.alerter.SendTicketAlert(ctx, req, result.AgentName); err != nil {
			s.log.Warn("Failed to send ticket alert", zap.Error(err))
		}
	}
	metrics.ContactFormTickets.WithLabelValues("created").Inc()
	s.log.Info("Created ticket from contact form",
		zap.Int("tenant_id", req.TenantID),
		zap.String("customer", req.Customer),
		zap.String("agent", result.AgentName),
	)
	return result, nil
}

// BuildTicketRequest - 검증 후 백엔드 티켓 생성 스키마로 변환
func (s *ContactFormService) BuildTicketRequest(in ContactFormInput) (model.TicketCreateRequest, error) {
	p := in.Payload

	// query에 값이 있으면 body보다 우선 (잘못된 값이어도 body로 넘어가지 않음)
	tenantID := p.BodyTenantID()
	if strings.TrimSpace(in.QueryTenantID) != "" {
		tenantID = model.ParseTenantID(in.QueryTenantID)
	}
	if tenantID <= 0 {
		return model.TicketCreateRequest{}, ErrTenantRequired
	}

	message := strings.TrimSpace(p.Message)
	subject := strings.TrimSpace(p.Subject)
	if message == "" && subject == "" {
		return model.TicketCreateRequest{}, ErrMessageRequired
	}

	name := strings.TrimSpace(p.Name)
	email := strings.TrimSpace(p.Email)
	customer := firstNonEmpty(name, email, "Anonymous")

	title := subject
	if title == "" {
		title = "Contact Form Submission from " + customer
	}

	return model.TicketCreateRequest{
		TenantID:      tenantID,
		Title:         title,
		Description:   firstNonEmpty(message, subject),
		Priority:      firstNonEmpty(p.Priority, DefaultPriority),
		Category:      firstNonEmpty(p.Category, DefaultCategory),
		Customer:      customer,
		CustomerEmail: email,
		CustomerPhone: strings.TrimSpace(p.Phone),
		Source:        contactFormSource,
		Channel:       contactFormChannel,
		Metadata: model.TicketMetadata{
			SubmittedAt: s.now().UTC().Format(time.RFC3339),
			Referrer:    firstNonEmpty(p.Referrer, in.Referer),
			UserAgent:   in.UserAgent,
		},
	}, nil
}

func (s *ContactFormService) releaseKey(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.log.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
