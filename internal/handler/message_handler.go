// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
package handler

import (
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// SendMessage 发送文本消息
// POST /api/messages/:userId/send/:chatId
// 请求体: request.SendMessageRequest
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendMessage(c.Request.Context(), c.Param("userId"), c.Param("chatId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// SendMediaMessage 发送媒体消息 (multipart)
// POST /api/messages/:userId/sendMedia/:chatId
// 表单字段: file (附件), text (可选文字)
func (h *MessageHandler) SendMediaMessage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		HandleParamError(c, err)
		return
	}
	text := c.PostForm("text")
	data, err := h.messageSvc.SendMediaMessage(c.Request.Context(), c.Param("userId"), c.Param("chatId"), text, file)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// GetMessages 获取聊天消息列表
// GET /api/messages/:userId/chat/:chatId
func (h *MessageHandler) GetMessages(c *gin.Context) {
	data, err := h.messageSvc.GetMessages(c.Request.Context(), c.Param("userId"), c.Param("chatId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetUnread 获取聊天内未读消息
// GET /api/messages/:userId/unread/:chatId
func (h *MessageHandler) GetUnread(c *gin.Context) {
	data, err := h.messageSvc.GetUnread(c.Request.Context(), c.Param("userId"), c.Param("chatId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// EditMessage 编辑消息
// PUT /api/messages/:userId/edit/:messageId
// 请求体: request.EditMessageRequest
func (h *MessageHandler) EditMessage(c *gin.Context) {
	var req request.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.EditMessage(c.Request.Context(), c.Param("userId"), c.Param("messageId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMessage 删除消息（软删除）
// DELETE /api/messages/:userId/edit/:messageId
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	if err := h.messageSvc.DeleteMessage(c.Request.Context(), c.Param("userId"), c.Param("messageId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// MarkSeen 标记单条消息已读
// POST /api/messages/:userId/seen/:messageId
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	if err := h.messageSvc.MarkSeen(c.Request.Context(), c.Param("userId"), c.Param("messageId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// MarkChatSeen 标记聊天内全部消息已读
// POST /api/messages/:userId/seenAll/:chatId
func (h *MessageHandler) MarkChatSeen(c *gin.Context) {
	count, err := h.messageSvc.MarkChatSeen(c.Request.Context(), c.Param("userId"), c.Param("chatId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"marked": count})
}
