package request

// UpdateUserRequest 更新用户资料请求
// 指针字段区分"未提供"和"置空"：nil 保持原值
// 使用位置:
//   - internal/handler/user_handler.go: UpdateUser
//   - internal/service/user/service.go: UpdateUser
type UpdateUserRequest struct {
	Username   *string `json:"username" binding:"omitempty,min=3,max=32"`
	Email      *string `json:"email" binding:"omitempty,email"`
	ProfilePic *string `json:"profile_pic"`
	Status     *string `json:"status"`
}
