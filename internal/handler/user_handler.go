// Package handler 提供 HTTP 请求处理器
// 本文件处理用户相关的 API 请求
package handler

import (
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
// 通过构造函数注入 UserService，遵循依赖倒置原则
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetUser 获取用户信息
// GET /api/users/:userId
func (h *UserHandler) GetUser(c *gin.Context) {
	data, err := h.userSvc.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateUser 更新用户资料
// PUT /api/users/:userId
// 请求体: request.UpdateUserRequest
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req request.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.UpdateUser(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SearchUsers 搜索用户
// GET /api/users/:userId/search?q=keyword
func (h *UserHandler) SearchUsers(c *gin.Context) {
	data, err := h.userSvc.SearchUsers(c.Request.Context(), c.Param("userId"), c.Query("q"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetContacts 获取联系人列表
// GET /api/users/:userId/contacts
func (h *UserHandler) GetContacts(c *gin.Context) {
	data, err := h.userSvc.GetContacts(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AddContact 添加联系人
// POST /api/users/:userId/contacts/:contactId
func (h *UserHandler) AddContact(c *gin.Context) {
	if err := h.userSvc.AddContact(c.Request.Context(), c.Param("userId"), c.Param("contactId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RemoveContact 移除联系人
// DELETE /api/users/:userId/contacts/:contactId
func (h *UserHandler) RemoveContact(c *gin.Context) {
	if err := h.userSvc.RemoveContact(c.Request.Context(), c.Param("userId"), c.Param("contactId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
