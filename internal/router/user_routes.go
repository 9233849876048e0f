package router

import (
	"mingle_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户相关路由
func RegisterUserRoutes(r *gin.Engine, h *handler.Handlers, gate gin.HandlerFunc) {
	userGroup := r.Group("/api/users/:userId")
	userGroup.Use(gate)
	{
		userGroup.GET("", h.User.GetUser)
		userGroup.PUT("", h.User.UpdateUser)
		userGroup.GET("/search", h.User.SearchUsers)
		userGroup.GET("/contacts", h.User.GetContacts)
		userGroup.POST("/contacts/:contactId", h.User.AddContact)
		userGroup.DELETE("/contacts/:contactId", h.User.RemoveContact)
	}
}
