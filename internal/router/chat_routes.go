package router

import (
	"mingle_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册聊天相关路由
// 成员/管理员操作全部要求请求方先通过认证
func RegisterChatRoutes(r *gin.Engine, h *handler.Handlers, gate gin.HandlerFunc) {
	chatGroup := r.Group("/api/chats/:userId")
	chatGroup.Use(gate)
	{
		chatGroup.POST("", h.Chat.CreateChat)
		chatGroup.GET("", h.Chat.GetChats)
		chatGroup.GET("/find/:chatId", h.Chat.GetChat)
		chatGroup.PUT("/find/:chatId", h.Chat.UpdateChat)
		chatGroup.DELETE("/find/:chatId", h.Chat.DeleteChat)
		chatGroup.POST("/find/:chatId/members/:memberId", h.Chat.AddMember)
		chatGroup.DELETE("/find/:chatId/members/:memberId", h.Chat.RemoveMember)
		chatGroup.POST("/find/:chatId/managers/:managerId", h.Chat.AddManager)
		chatGroup.DELETE("/find/:chatId/managers/:managerId", h.Chat.RemoveManager)
		chatGroup.POST("/leave/:chatId", h.Chat.LeaveChat)
	}
}
