package router

import (
	"mingle_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterMediaRoutes 注册媒体相关路由
func RegisterMediaRoutes(r *gin.Engine, h *handler.Handlers, gate gin.HandlerFunc) {
	mediaGroup := r.Group("/api/media/:userId")
	mediaGroup.Use(gate)
	{
		mediaGroup.POST("/upload", h.Media.UploadMedia)
		mediaGroup.GET("", h.Media.GetOwnMedia)
		mediaGroup.GET("/find/:mediaId", h.Media.GetMedia)
		mediaGroup.PUT("/find/:mediaId", h.Media.UpdateMedia)
		mediaGroup.DELETE("/find/:mediaId", h.Media.DeleteMedia)
		mediaGroup.PUT("/link/:mediaId/:messageId", h.Media.LinkMedia)
		mediaGroup.GET("/related/:relatedTo", h.Media.GetMediaByRelation)
		mediaGroup.GET("/download/:mediaId", h.Media.DownloadMedia)
		mediaGroup.GET("/stream/:filename", h.Media.StreamMedia)
	}
}
