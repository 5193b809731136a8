// 문의 폼(contact form) 웹훅 페이로드와 백엔드 티켓 생성 요청 구조체 정의
// handler, service, client 레이어에서 공통으로 사용

package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ContactFormPayload - 외부 웹사이트 문의 폼이 보내는 페이로드
type ContactFormPayload struct {
	// 숫자 또는 숫자 문자열 모두 허용
	TenantID json.RawMessage `json:"tenantId,omitempty"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Subject  string          `json:"subject"`
	Message  string          `json:"message"`
	Priority string          `json:"priority,omitempty"`
	Category string          `json:"category,omitempty"`
	Referrer string          `json:"referrer,omitempty"`
}

// BodyTenantID - body의 tenantId를 양의 정수로 해석 (실패 시 0)
func (p ContactFormPayload) BodyTenantID() int {
	if len(p.TenantID) == 0 {
		return 0
	}
	var num json.Number
	if err := json.Unmarshal(p.TenantID, &num); err == nil {
		return ParseTenantID(num.String())
	}
	var str string
	if err := json.Unmarshal(p.TenantID, &str); err == nil {
		return ParseTenantID(str)
	}
	return 0
}

// ParseTenantID - 양의 정수가 아니면 0
func ParseTenantID(raw string) int {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// TicketMetadata - 티켓 생성 시점의 부가 정보
type TicketMetadata struct {
	SubmittedAt string `json:"submittedAt"`
	Referrer    string `json:"referrer,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
}

// TicketCreateRequest - 백엔드 POST /tickets 요청 스키마
type TicketCreateRequest struct {
	TenantID      int            `json:"tenantId"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Priority      string         `json:"priority"`
	Category      string         `json:"category"`
	Customer      string         `json:"customer"`
	CustomerEmail string         `json:"customerEmail,omitempty"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	Source        string         `json:"source"`
	Channel       string         `json:"channel"`
	Metadata      TicketMetadata `json:"metadata"`
}

// TicketAssignment - 티켓 생성 응답에서 배정된 상담원 정보만 해석
type TicketAssignment struct {
	AssignedAgent *struct {
		Name string `json:"name"`
	} `json:"assignedAgent,omitempty"`
}

// AgentName - 배정된 상담원 이름 (없으면 "")
func (a TicketAssignment) AgentName() string {
	if a.AssignedAgent == nil {
		return ""
	}
	return strings.TrimSpace(a.AssignedAgent.Name)
}
