package respond

// UnreadCountRespond 未读通知计数响应
// 使用位置:
//   - internal/service/notification/service.go: CountUnread
type UnreadCountRespond struct {
	Count int64 `json:"count"`
}
