// Package model 定义 MongoDB 实体模型
// 本文件定义用户模型，包含认证信息、资料和联系人列表
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
// 对应 users 集合
type User struct {
	Id primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Username 用户名，唯一索引
	Username string `bson:"username" json:"username"`

	// Email 邮箱，唯一索引
	Email string `bson:"email" json:"email"`

	// Password 密码（bcrypt 哈希），永不序列化到响应
	Password string `bson:"password" json:"-"`

	// ProfilePic 头像引用（URL 或媒体文件名）
	ProfilePic string `bson:"profile_pic" json:"profile_pic"`

	// Status 个性签名/状态文本
	Status string `bson:"status" json:"status"`

	// Contacts 联系人引用集合
	Contacts []primitive.ObjectID `bson:"contacts" json:"contacts"`

	// Chats 聊天引用集合
	Chats []primitive.ObjectID `bson:"chats" json:"chats"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SetPassword 将明文密码 bcrypt 加密后写入 Password 字段
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword 校验密码是否正确，用于登录验证
func (u *User) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}

// HasContact 判断指定用户是否已在联系人列表中
func (u *User) HasContact(id primitive.ObjectID) bool {
	for _, c := range u.Contacts {
		if c == id {
			return true
		}
	}
	return false
}
