// Package handler 提供 HTTP 请求处理器
// 本文件处理媒体相关的 API 请求
package handler

import (
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MediaHandler 媒体请求处理器
type MediaHandler struct {
	mediaSvc service.MediaService
}

// NewMediaHandler 创建媒体处理器实例
func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// UploadMedia 上传媒体文件 (multipart)
// POST /api/media/:userId/upload
// 表单字段: file, related_to, on_model, is_public
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		HandleParamError(c, err)
		return
	}
	var req request.UploadMediaRequest
	if err := c.ShouldBind(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.mediaSvc.UploadMedia(c.Request.Context(), c.Param("userId"), file, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// GetOwnMedia 获取自己上传的全部媒体
// GET /api/media/:userId
func (h *MediaHandler) GetOwnMedia(c *gin.Context) {
	data, err := h.mediaSvc.GetOwnMedia(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMedia 获取单个媒体元数据
// GET /api/media/:userId/find/:mediaId
func (h *MediaHandler) GetMedia(c *gin.Context) {
	data, err := h.mediaSvc.GetMedia(c.Request.Context(), c.Param("userId"), c.Param("mediaId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMediaByRelation 按多态引用查询媒体
// GET /api/media/:userId/related/:relatedTo?on_model=Chat
func (h *MediaHandler) GetMediaByRelation(c *gin.Context) {
	data, err := h.mediaSvc.GetMediaByRelation(c.Request.Context(), c.Param("userId"), c.Param("relatedTo"), c.Query("on_model"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateMedia 更新媒体可见性或引用
// PUT /api/media/:userId/find/:mediaId
// 请求体: request.UpdateMediaRequest
func (h *MediaHandler) UpdateMedia(c *gin.Context) {
	var req request.UpdateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.mediaSvc.UpdateMedia(c.Request.Context(), c.Param("userId"), c.Param("mediaId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// LinkMedia 将媒体挂接到消息
// PUT /api/media/:userId/link/:mediaId/:messageId
func (h *MediaHandler) LinkMedia(c *gin.Context) {
	data, err := h.mediaSvc.LinkToMessage(c.Request.Context(), c.Param("userId"), c.Param("mediaId"), c.Param("messageId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMedia 删除媒体及物理文件
// DELETE /api/media/:userId/find/:mediaId
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	if err := h.mediaSvc.DeleteMedia(c.Request.Context(), c.Param("userId"), c.Param("mediaId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DownloadMedia 以附件方式下载媒体文件
// GET /api/media/:userId/download/:mediaId
// 附件文件名使用上传时的原始文件名
func (h *MediaHandler) DownloadMedia(c *gin.Context) {
	path, media, err := h.mediaSvc.DownloadFile(c.Request.Context(), c.Param("userId"), c.Param("mediaId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Type", media.Mimetype)
	c.Header("Content-Disposition", `attachment; filename="`+media.OriginalName+`"`)
	c.File(path)
}

// StreamMedia 流式下载媒体文件
// GET /api/media/:userId/stream/:filename
// 命中可见性规则后由 gin 直接回写文件内容
func (h *MediaHandler) StreamMedia(c *gin.Context) {
	path, media, err := h.mediaSvc.ResolveFile(c.Request.Context(), c.Param("userId"), c.Param("filename"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Type", media.Mimetype)
	c.Header("Content-Disposition", `inline; filename="`+media.OriginalName+`"`)
	c.File(path)
}
