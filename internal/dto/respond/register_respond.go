package respond

// RegisterRespond 用户注册响应
// 使用位置:
//   - internal/service/user/service.go: Register
type RegisterRespond struct {
	Id         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}
