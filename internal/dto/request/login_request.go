package request

// LoginRequest 用户登录请求，login 为用户名或邮箱
// 使用位置:
//   - internal/handler/auth_handler.go: Login
//   - internal/service/auth/service.go: Login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}
