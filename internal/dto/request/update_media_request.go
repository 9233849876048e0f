package request

// UpdateMediaRequest 更新媒体元数据请求
// IsPublic 用指针区分"未提供"和"显式设为 false"
// 使用位置:
//   - internal/handler/media_handler.go: UpdateMedia
//   - internal/service/media/service.go: UpdateMedia
type UpdateMediaRequest struct {
	IsPublic  *bool  `json:"is_public"`
	RelatedTo string `json:"related_to"`
	OnModel   string `json:"on_model"`
}
