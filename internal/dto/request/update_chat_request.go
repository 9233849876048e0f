package request

// UpdateChatRequest 更新聊天信息请求
// 指针字段区分"未提供"和"置空"：nil 保持原值
// 使用位置:
//   - internal/handler/chat_handler.go: UpdateChat
//   - internal/service/chat/service.go: UpdateChat
type UpdateChatRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=128"`
	Description *string `json:"description"`
	Photo       *string `json:"photo"`
}
