package mq

import (
	"context"
	"sync"

	"mingle_chat_server/pkg/constants"
	"mingle_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// ChannelQueue 进程内通知队列
// 基于带缓冲 channel，单实例部署时的默认后端
type ChannelQueue struct {
	events    chan *NotificationEvent
	closeOnce sync.Once
}

// NewChannelQueue 创建进程内通知队列
func NewChannelQueue() *ChannelQueue {
	return &ChannelQueue{
		events: make(chan *NotificationEvent, constants.CHANNEL_SIZE),
	}
}

// Publish 发布通知事件
// 队列满时丢弃并记录，不阻塞业务路径
func (q *ChannelQueue) Publish(ctx context.Context, event *NotificationEvent) error {
	select {
	case q.events <- event:
		return nil
	case <-ctx.Done():
		return errorx.Wrap(ctx.Err(), errorx.CodeServerBusy, "publish notification event")
	default:
		zap.L().Warn("notification channel full, event dropped",
			zap.String("recipient", event.Recipient.Hex()))
		return errorx.New(errorx.CodeServerBusy, "notification channel full")
	}
}

// Consume 循环消费事件直到队列关闭或 ctx 取消
func (q *ChannelQueue) Consume(ctx context.Context, handler func(ctx context.Context, event *NotificationEvent) error) {
	for {
		select {
		case event, ok := <-q.events:
			if !ok {
				return
			}
			if err := handler(ctx, event); err != nil {
				zap.L().Error("handle notification event failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close 关闭队列
func (q *ChannelQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.events)
	})
	return nil
}

var _ NotificationQueue = (*ChannelQueue)(nil)
