package mq

import (
	"context"
	"time"

	"mingle_chat_server/internal/dao/mongodb/repository"
	"mingle_chat_server/internal/model"

	"go.uber.org/zap"
)

// Dispatcher 通知分发器
// 后台消费队列中的事件并落库，业务路径不被通知写入阻塞
type Dispatcher struct {
	queue            NotificationQueue
	notificationRepo repository.NotificationRepository
	cancel           context.CancelFunc
}

// NewDispatcher 创建通知分发器
func NewDispatcher(queue NotificationQueue, notificationRepo repository.NotificationRepository) *Dispatcher {
	return &Dispatcher{
		queue:            queue,
		notificationRepo: notificationRepo,
	}
}

// Start 启动后台消费协程
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("notification dispatcher panic", zap.Any("recover", r))
			}
		}()
		d.queue.Consume(ctx, d.handle)
	}()
	zap.L().Info("notification dispatcher started")
}

// Stop 停止消费并关闭队列
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	if err := d.queue.Close(); err != nil {
		zap.L().Error("close notification queue failed", zap.Error(err))
	}
}

// handle 将事件持久化为通知记录
func (d *Dispatcher) handle(ctx context.Context, event *NotificationEvent) error {
	notification := &model.Notification{
		Recipient: event.Recipient,
		Content:   event.Content,
		Type:      event.Type,
		Relation: model.Relation{
			RelatedTo: event.RelatedTo,
			OnModel:   event.OnModel,
		},
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	return d.notificationRepo.Create(ctx, notification)
}
