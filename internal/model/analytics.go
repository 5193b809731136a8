package model

import "time"

// Stats - 백엔드 analytics 응답 (스키마는 백엔드 소유이므로 그대로 전달)
type Stats map[string]any

// ResourceState - 서버 측 fetch 리소스의 현재 상태
type ResourceState struct {
	Data      Stats      `json:"data"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DashboardOverview - GET /api/dashboard/overview 응답
type DashboardOverview struct {
	Success     bool          `json:"success"`
	TenantStats ResourceState `json:"tenantStats"`
	TicketStats ResourceState `json:"ticketStats"`
}
