// Package mq 提供通知事件的异步分发队列
// 支持两种后端：进程内 channel（单机）和 Kafka（多实例）
// 通过配置 messageMode 切换，接口保持一致
package mq

import (
	"context"

	"mingle_chat_server/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationEvent 通知事件
// 生产者在业务动作完成后发布，消费者负责落库
type NotificationEvent struct {
	Recipient primitive.ObjectID     `json:"recipient"`            // 接收者
	Content   string                 `json:"content"`              // 通知文本
	Type      model.NotificationType `json:"type"`                 // 通知类别
	RelatedTo primitive.ObjectID     `json:"related_to,omitempty"` // 可选引用 id
	OnModel   model.RelatedModel     `json:"on_model,omitempty"`   // 引用判别标签
}

// NotificationQueue 通知队列接口
// Publish 非阻塞或有限阻塞；Consume 阻塞直到队列关闭或 ctx 取消
type NotificationQueue interface {
	// Publish 发布通知事件
	Publish(ctx context.Context, event *NotificationEvent) error
	// Consume 循环消费事件并交给 handler 处理
	// handler 返回的错误只记录不中断消费
	Consume(ctx context.Context, handler func(ctx context.Context, event *NotificationEvent) error)
	// Close 关闭队列，释放底层资源
	Close() error
}
