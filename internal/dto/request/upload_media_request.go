package request

// UploadMediaRequest 上传媒体的表单字段，文件本体从 multipart 读取
// RelatedTo 与 OnModel 要么都填要么都空
// 使用位置:
//   - internal/handler/media_handler.go: UploadMedia
//   - internal/service/media/service.go: UploadMedia
type UploadMediaRequest struct {
	RelatedTo string `form:"related_to"`
	OnModel   string `form:"on_model"`
	IsPublic  *bool  `form:"is_public"`
}
