package respond

// UserInfoRespond 用户信息响应，不含密码与内部引用
// 使用位置:
//   - internal/service/user/service.go: GetUser, SearchUsers, GetContacts
type UserInfoRespond struct {
	Id         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}
