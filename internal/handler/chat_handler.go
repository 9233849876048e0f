// Package handler 提供 HTTP 请求处理器
// 本文件处理聊天相关的 API 请求
package handler

import (
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler 聊天请求处理器
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建聊天处理器实例
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// CreateChat 创建聊天
// POST /api/chats/:userId
// 请求体: request.CreateChatRequest
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req request.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.CreateChat(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// GetChats 获取用户所在的全部聊天
// GET /api/chats/:userId
func (h *ChatHandler) GetChats(c *gin.Context) {
	data, err := h.chatSvc.GetChats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetChat 获取单个聊天
// GET /api/chats/:userId/find/:chatId
func (h *ChatHandler) GetChat(c *gin.Context) {
	data, err := h.chatSvc.GetChat(c.Request.Context(), c.Param("userId"), c.Param("chatId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateChat 更新聊天信息
// PUT /api/chats/:userId/find/:chatId
// 请求体: request.UpdateChatRequest
func (h *ChatHandler) UpdateChat(c *gin.Context) {
	var req request.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.UpdateChat(c.Request.Context(), c.Param("userId"), c.Param("chatId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AddMember 添加成员
// POST /api/chats/:userId/find/:chatId/members/:memberId
func (h *ChatHandler) AddMember(c *gin.Context) {
	data, err := h.chatSvc.AddMember(c.Request.Context(), c.Param("userId"), c.Param("chatId"), c.Param("memberId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveMember 移除成员
// DELETE /api/chats/:userId/find/:chatId/members/:memberId
func (h *ChatHandler) RemoveMember(c *gin.Context) {
	data, err := h.chatSvc.RemoveMember(c.Request.Context(), c.Param("userId"), c.Param("chatId"), c.Param("memberId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AddManager 提升管理员
// POST /api/chats/:userId/find/:chatId/managers/:managerId
func (h *ChatHandler) AddManager(c *gin.Context) {
	data, err := h.chatSvc.AddManager(c.Request.Context(), c.Param("userId"), c.Param("chatId"), c.Param("managerId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveManager 撤销管理员
// DELETE /api/chats/:userId/find/:chatId/managers/:managerId
func (h *ChatHandler) RemoveManager(c *gin.Context) {
	data, err := h.chatSvc.RemoveManager(c.Request.Context(), c.Param("userId"), c.Param("chatId"), c.Param("managerId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// LeaveChat 退出聊天
// POST /api/chats/:userId/leave/:chatId
func (h *ChatHandler) LeaveChat(c *gin.Context) {
	if err := h.chatSvc.LeaveChat(c.Request.Context(), c.Param("userId"), c.Param("chatId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteChat 删除聊天（对请求方语义等同退出）
// DELETE /api/chats/:userId/find/:chatId
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	if err := h.chatSvc.DeleteChat(c.Request.Context(), c.Param("userId"), c.Param("chatId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
