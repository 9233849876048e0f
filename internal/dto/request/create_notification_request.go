package request

// CreateNotificationRequest 创建通知请求
// RelatedTo 存在时 OnModel 必填
// 使用位置:
//   - internal/handler/notification_handler.go: CreateNotification
//   - internal/service/notification/service.go: CreateNotification
type CreateNotificationRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Type      string `json:"type"`
	RelatedTo string `json:"related_to"`
	OnModel   string `json:"on_model"`
}
