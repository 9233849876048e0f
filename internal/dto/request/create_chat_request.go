package request

// CreateChatRequest 创建聊天请求
// Members 为可选的初始成员 id 列表，创建者始终在内
// 使用位置:
//   - internal/handler/chat_handler.go: CreateChat
//   - internal/service/chat/service.go: CreateChat
type CreateChatRequest struct {
	Name        string   `json:"name" binding:"required,max=128"`
	Description string   `json:"description"`
	IsGroup     bool     `json:"is_group"`
	Members     []string `json:"members"`
	Photo       string   `json:"photo"`
}
