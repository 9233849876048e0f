// Package model 定义 MongoDB 实体模型
// 本文件定义通知模型
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType 通知类别标签
type NotificationType string

const (
	NotificationMessage       NotificationType = "message"
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationSystem        NotificationType = "system"
)

// Notification 通知模型
// 对应 notifications 集合
type Notification struct {
	Id primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Recipient 接收者引用
	Recipient primitive.ObjectID `bson:"recipient" json:"recipient"`

	// Content 展示给用户的文本内容
	Content string `bson:"content" json:"content"`

	// Type 通知类别，默认 system
	Type NotificationType `bson:"type" json:"type"`

	// Relation 可选的多态引用，RelatedTo 存在时 OnModel 必填
	Relation `bson:",inline"`

	// IsRead 已读标志，新通知默认未读
	IsRead bool `bson:"is_read" json:"is_read"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
