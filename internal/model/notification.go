package model

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Valid - 허용된 4가지 타입인지 확인
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// Notification - 대시보드에 표시되는 인메모리 알림
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	ActionURL string           `json:"actionUrl,omitempty"`
}

// NotificationRequest - POST /api/notifications 요청
type NotificationRequest struct {
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ActionURL string           `json:"actionUrl"`
}

// NotificationListResponse - 목록 조회 응답
type NotificationListResponse struct {
	Success bool           `json:"success"`
	Data    []Notification `json:"data"`
	Unread  int            `json:"unread"`
}
