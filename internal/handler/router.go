package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers - 라우터에 등록할 핸들러 묶음. nil인 핸들러의 라우트는 등록하지 않는다
type Handlers struct {
	Proxy        *ProxyHandler
	ContactForm  *ContactFormHandler
	Notification *NotificationHandler
	Stream       gin.HandlerFunc
	Dashboard    *DashboardHandler
	Metrics      gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/", Root)
	r.GET("/ping", Ping)
	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics)
	}

	api := r.Group("/api")

	if h.Proxy != nil {
		api.GET("/agents", h.Proxy.ListAgents)
		api.POST("/agents", h.Proxy.CreateAgent)
		api.GET("/tenants", h.Proxy.ListTenants)
		api.POST("/tenants", h.Proxy.CreateTenant)
		api.GET("/tickets", h.Proxy.ListTickets)
		api.POST("/tickets", h.Proxy.CreateTicket)
		api.GET("/analytics", h.Proxy.GetAnalytics)
	}

	if h.ContactForm != nil {
		api.POST("/webhooks/contact-form", h.ContactForm.Submit)
	}

	if h.Notification != nil {
		api.GET("/notifications", h.Notification.List)
		api.POST("/notifications", h.Notification.Create)
		api.DELETE("/notifications", h.Notification.Clear)
		api.POST("/notifications/:id/read", h.Notification.MarkAsRead)
	}
	if h.Stream != nil {
		api.GET("/notifications/stream", h.Stream)
	}

	if h.Dashboard != nil {
		api.GET("/dashboard/overview", h.Dashboard.GetOverview)
		api.POST("/dashboard/overview/refresh", h.Dashboard.RefreshOverview)
	}
}
