// Package model 定义 MongoDB 实体模型
// 本文件定义媒体元数据模型，字节内容存放在本地文件存储
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media 媒体元数据模型
// 对应 media 集合
type Media struct {
	Id primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Filename 系统生成的唯一文件名（uuid + 扩展名）
	Filename string `bson:"filename" json:"filename"`

	// OriginalName 客户端上传时的原始文件名
	OriginalName string `bson:"original_name" json:"original_name"`

	// Mimetype 文件 MIME 类型，如 image/jpeg
	Mimetype string `bson:"mimetype" json:"mimetype"`

	// Size 文件大小（字节）
	Size int64 `bson:"size" json:"size"`

	// Path 服务器上的物理存储路径
	Path string `bson:"path" json:"path"`

	// Url 公开访问地址
	Url string `bson:"url" json:"url"`

	// UploadedBy 上传者引用
	UploadedBy primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`

	// Relation 可选的多态引用（Chat/Message/User）
	Relation `bson:",inline"`

	// IsPublic 公开可见标志，false 时仅上传者可见
	IsPublic bool `bson:"is_public" json:"is_public"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// VisibleTo 判断媒体对指定用户是否可见
// 上传者无条件可见，其他用户仅在公开时可见
func (m *Media) VisibleTo(userId primitive.ObjectID) bool {
	return m.IsPublic || m.UploadedBy == userId
}
