package respond

// LoginRespond 用户登录响应，携带双令牌
// 使用位置:
//   - internal/service/auth/service.go: Login
type LoginRespond struct {
	Id           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfilePic   string `json:"profile_pic"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
