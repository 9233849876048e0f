// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"mingle_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
// 注册/登录/刷新为公开接口，退出登录需要通过认证
func RegisterAuthRoutes(r *gin.Engine, h *handler.Handlers, gate gin.HandlerFunc) {
	authGroup := r.Group("/api/auth")
	{
		// POST /api/auth/register - 用户注册
		authGroup.POST("/register", h.Auth.Register)
		// POST /api/auth/login - 密码登录
		authGroup.POST("/login", h.Auth.Login)
		// POST /api/auth/refresh - 刷新双令牌
		authGroup.POST("/refresh", h.Auth.RefreshToken)
		// POST /api/auth/logout/:userId - 吊销刷新令牌
		authGroup.POST("/logout/:userId", gate, h.Auth.Logout)
	}
}
