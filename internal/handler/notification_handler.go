// Package handler 提供 HTTP 请求处理器
// 本文件处理通知相关的 API 请求
package handler

import (
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知请求处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建通知处理器实例
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// CreateNotification 创建通知
// POST /api/notifications/:userId
// 请求体: request.CreateNotificationRequest
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req request.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.notificationSvc.CreateNotification(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// GetNotifications 获取通知列表
// GET /api/notifications/:userId
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	data, err := h.notificationSvc.GetNotifications(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CountUnread 统计未读通知数
// GET /api/notifications/:userId/unreadCount
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	data, err := h.notificationSvc.CountUnread(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkRead 标记单条通知已读
// POST /api/notifications/:userId/read/:notificationId
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationSvc.MarkRead(c.Request.Context(), c.Param("userId"), c.Param("notificationId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// MarkAllRead 标记全部通知已读
// POST /api/notifications/:userId/readAll
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	data, err := h.notificationSvc.MarkAllRead(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteNotification 删除通知
// DELETE /api/notifications/:userId/find/:notificationId
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	if err := h.notificationSvc.DeleteNotification(c.Request.Context(), c.Param("userId"), c.Param("notificationId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
