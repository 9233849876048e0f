package request

// SendMessageRequest 发送文本消息请求
// 媒体消息走 multipart 上传路径，不使用此结构
// 使用位置:
//   - internal/handler/message_handler.go: SendMessage
//   - internal/service/message/service.go: SendMessage
type SendMessageRequest struct {
	Text        string `json:"text" binding:"required"`
	IsForwarded bool   `json:"is_forwarded"`
}
