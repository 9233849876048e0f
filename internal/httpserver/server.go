// Package httpserver 提供 HTTP 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件、静态资源和路由
package httpserver

import (
	"mingle_chat_server/internal/config"
	"mingle_chat_server/internal/handler"
	"mingle_chat_server/internal/infrastructure/logger"
	"mingle_chat_server/internal/infrastructure/middleware"
	"mingle_chat_server/internal/router"
	"mingle_chat_server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化 HTTP 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建空白 Gin 引擎（不含默认中间件）
//  2. 注册 Zap 日志和恢复中间件
//  3. 配置 CORS 跨域规则
//  4. 可选挂载 TLS 重定向
//  5. 注册业务路由
func Init(handlers *handler.Handlers, svc *service.Services) *gin.Engine {
	// 创建空白 Gin 引擎（不使用 gin.Default() 以便完全控制中间件）
	engine := gin.New()

	// GinLogger 记录每个请求的路径、状态码、耗时等
	engine.Use(logger.GinLogger())
	// GinRecovery 捕获 panic 并记录堆栈
	engine.Use(logger.GinRecovery(true))

	// 配置 CORS 跨域规则
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// TLS 重定向中间件（由 Nginx 处理 SSL 时关闭）
	conf := config.GetConfig()
	if conf.MainConfig.TlsRedirect {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	// 注册所有业务路由
	router.RegisterRoutes(engine, handlers, svc.Auth)

	return engine
}
