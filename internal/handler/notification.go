package handler

import (
	"net/http"
	"strings"

	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/gin-gonic/gin"
)

type notificationStore interface {
	Create(typ model.NotificationType, title, message, actionURL string) model.Notification
	MarkAsRead(id string)
	List() []model.Notification
	UnreadCount() int
	Clear()
}

type NotificationHandler struct {
	store notificationStore
}

func NewNotificationHandler(store notificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List godoc
// @Summary List notifications (newest first)
// @Tags notifications
// @Produce json
// @Success 200 {object} model.NotificationListResponse
// @Router /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, model.NotificationListResponse{
		Success: true,
		Data:    h.store.List(),
		Unread:  h.store.UnreadCount(),
	})
}

// Create godoc
// @Summary Create notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body model.NotificationRequest true "Notification"
// @Success 201 {object} object
// @Failure 400 {object} model.ErrorResponse
// @Router /api/notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req model.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON payload"})
		return
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "type must be one of info, success, warning, error"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "title is required"})
		return
	}

	n := h.store.Create(req.Type, req.Title, req.Message, req.ActionURL)
	c.JSON(http.StatusCreated, model.APIResponse[model.Notification]{Success: true, Data: &n})
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} object
// @Router /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	// 없는 id도 에러 없이 무시
	h.store.MarkAsRead(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "unread": h.store.UnreadCount()})
}

// Clear godoc
// @Summary Remove all notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} object
// @Router /api/notifications [delete]
func (h *NotificationHandler) Clear(c *gin.Context) {
	h.store.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
