// Package model 定义 MongoDB 实体模型
// 本文件定义聊天模型，是成员/管理员一致性规则的载体
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat 聊天模型（单聊与群聊共用）
// 对应 chats 集合
// 不变式：Managers ⊆ Members；只要还有成员就至少保留一名管理员
// （leave 路径负责补位，remove-manager 路径刻意不补位）
type Chat struct {
	Id primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Name 聊天名称，必填
	Name string `bson:"name" json:"name"`

	// Description 描述，默认空
	Description string `bson:"description" json:"description"`

	// IsGroup 群聊标志，false 为单聊
	IsGroup bool `bson:"is_group" json:"is_group"`

	// Managers 管理员引用集合，创建后非空
	Managers []primitive.ObjectID `bson:"manager" json:"manager"`

	// Members 成员引用集合
	Members []primitive.ObjectID `bson:"members" json:"members"`

	// Messages 消息引用有序列表
	Messages []primitive.ObjectID `bson:"messages" json:"messages"`

	// Photo 群头像，仅群聊有意义
	Photo string `bson:"photo,omitempty" json:"photo,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsMember 判断用户是否为当前成员
func (c *Chat) IsMember(id primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// IsManager 判断用户是否为当前管理员
func (c *Chat) IsManager(id primitive.ObjectID) bool {
	for _, m := range c.Managers {
		if m == id {
			return true
		}
	}
	return false
}

// RemoveMember 从成员集合中过滤掉指定用户
func (c *Chat) RemoveMember(id primitive.ObjectID) {
	c.Members = removeID(c.Members, id)
}

// RemoveManager 从管理员集合中过滤掉指定用户
func (c *Chat) RemoveManager(id primitive.ObjectID) {
	c.Managers = removeID(c.Managers, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
