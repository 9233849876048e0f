package router

import (
	"mingle_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由
func RegisterMessageRoutes(r *gin.Engine, h *handler.Handlers, gate gin.HandlerFunc) {
	messageGroup := r.Group("/api/messages/:userId")
	messageGroup.Use(gate)
	{
		messageGroup.POST("/send/:chatId", h.Message.SendMessage)
		messageGroup.POST("/sendMedia/:chatId", h.Message.SendMediaMessage)
		messageGroup.GET("/chat/:chatId", h.Message.GetMessages)
		messageGroup.GET("/unread/:chatId", h.Message.GetUnread)
		messageGroup.PUT("/edit/:messageId", h.Message.EditMessage)
		messageGroup.DELETE("/edit/:messageId", h.Message.DeleteMessage)
		messageGroup.POST("/seen/:messageId", h.Message.MarkSeen)
		messageGroup.POST("/seenAll/:chatId", h.Message.MarkChatSeen)
	}
}
