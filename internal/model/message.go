// Package model 定义 MongoDB 实体模型
// 本文件定义消息模型，包含媒体标签、已读集合和生命周期状态
package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaType 消息携带的媒体类型标签
type MediaType string

const (
	MediaNone  MediaType = "none"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaFile  MediaType = "file"
)

// MediaTypeFromMime 根据 MIME 类型推断消息媒体标签
func MediaTypeFromMime(mimetype string) MediaType {
	switch {
	case strings.HasPrefix(mimetype, "image/"):
		return MediaImage
	case strings.HasPrefix(mimetype, "video/"):
		return MediaVideo
	default:
		return MediaFile
	}
}

// MessageState 消息生命周期状态
// 显式状态而非裸布尔，便于将来扩展（如 purged）
type MessageState int8

const (
	MessageActive  MessageState = 0 // 正常
	MessageDeleted MessageState = 1 // 已软删除，内容与媒体已摘除但记录保留
)

// Message 消息模型
// 对应 messages 集合
type Message struct {
	Id primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// ChatId 所属聊天引用
	ChatId primitive.ObjectID `bson:"chat_id" json:"chat_id"`

	// Sender 发送者引用
	Sender primitive.ObjectID `bson:"sender" json:"sender"`

	// Text 文本内容，默认空
	Text string `bson:"text" json:"text"`

	// MediaType 媒体标签：none/image/video/file
	MediaType MediaType `bson:"media_type" json:"media_type"`

	// MediaUrl 媒体访问地址，默认空
	MediaUrl string `bson:"media_url" json:"media_url"`

	// FileName 附件原始文件名，默认空
	FileName string `bson:"file_name" json:"file_name"`

	// SeenBy 已读用户集合，创建时以发送者为种子
	SeenBy []primitive.ObjectID `bson:"seen_by" json:"seen_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// UpdatedAt 最后编辑时间，编辑前为 nil
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`

	// State 生命周期状态
	State MessageState `bson:"state" json:"state"`

	// IsForwarded 转发标志
	IsForwarded bool `bson:"is_forwarded" json:"is_forwarded"`
}

// HasMedia 判断消息是否携带媒体附件
func (m *Message) HasMedia() bool {
	return m.MediaType != "" && m.MediaType != MediaNone
}

// IsDeleted 判断消息是否已被软删除
func (m *Message) IsDeleted() bool {
	return m.State == MessageDeleted
}

// SeenByUser 判断指定用户是否已读
func (m *Message) SeenByUser(id primitive.ObjectID) bool {
	for _, u := range m.SeenBy {
		if u == id {
			return true
		}
	}
	return false
}
