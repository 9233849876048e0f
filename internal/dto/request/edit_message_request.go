package request

// EditMessageRequest 编辑消息请求，仅允许替换文本
// 使用位置:
//   - internal/handler/message_handler.go: EditMessage
//   - internal/service/message/service.go: EditMessage
type EditMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
