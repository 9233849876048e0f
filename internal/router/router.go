// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
//
// 路由约定：受保护路由的第一个路径参数 :userId 标识请求方，
// 由 AuthGate 中间件统一校验其存在性
package router

import (
	"mingle_chat_server/internal/handler"
	"mingle_chat_server/internal/infrastructure/middleware"
	"mingle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
// 在 httpserver.Init() 中调用，按模块分别注册各个路由组
func RegisterRoutes(r *gin.Engine, h *handler.Handlers, authSvc service.AuthService) {
	gate := middleware.AuthGate(authSvc)

	RegisterAuthRoutes(r, h, gate)         // 认证路由（注册/登录/刷新）
	RegisterUserRoutes(r, h, gate)         // 用户路由
	RegisterChatRoutes(r, h, gate)         // 聊天路由
	RegisterMessageRoutes(r, h, gate)      // 消息路由
	RegisterMediaRoutes(r, h, gate)        // 媒体路由
	RegisterNotificationRoutes(r, h, gate) // 通知路由
}
