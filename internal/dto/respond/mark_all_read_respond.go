package respond

// MarkAllReadRespond 批量已读响应，返回实际更新条数
// 使用位置:
//   - internal/service/notification/service.go: MarkAllRead
type MarkAllReadRespond struct {
	Updated int64 `json:"updated"`
}
