package router

import (
	"mingle_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes 注册通知相关路由
func RegisterNotificationRoutes(r *gin.Engine, h *handler.Handlers, gate gin.HandlerFunc) {
	notificationGroup := r.Group("/api/notifications/:userId")
	notificationGroup.Use(gate)
	{
		notificationGroup.POST("", h.Notification.CreateNotification)
		notificationGroup.GET("", h.Notification.GetNotifications)
		notificationGroup.GET("/unreadCount", h.Notification.CountUnread)
		notificationGroup.POST("/read/:notificationId", h.Notification.MarkRead)
		notificationGroup.POST("/readAll", h.Notification.MarkAllRead)
		notificationGroup.DELETE("/find/:notificationId", h.Notification.DeleteNotification)
	}
}
