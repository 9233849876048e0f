// Package notification 提供通知相关的业务逻辑
// 通知由系统动作（消息、入群）异步产生，也可由接口直接创建
package notification

import (
	"context"
	"time"

	"mingle_chat_server/internal/dao/mongodb/repository"
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/dto/respond"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/pkg/errorx"
)

// Service 通知服务实现
type Service struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService 创建通知服务实例
func NewNotificationService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

// CreateNotification 创建通知
// type 缺省为 system；related_to 存在时 on_model 必填
func (s *Service) CreateNotification(ctx context.Context, req request.CreateNotificationRequest) (*model.Notification, error) {
	recipientOid, err := repository.ParseObjectID(req.Recipient)
	if err != nil {
		return nil, err
	}

	notificationType := model.NotificationSystem
	if req.Type != "" {
		switch model.NotificationType(req.Type) {
		case model.NotificationMessage, model.NotificationFriendRequest, model.NotificationSystem:
			notificationType = model.NotificationType(req.Type)
		default:
			return nil, errorx.Newf(errorx.CodeValidation, "未知的通知类别 %q", req.Type)
		}
	}

	var relation model.Relation
	if req.RelatedTo != "" || req.OnModel != "" {
		if req.RelatedTo == "" || req.OnModel == "" {
			return nil, errorx.New(errorx.CodeValidation, "related_to 和 on_model 必须同时提供")
		}
		relatedOid, err := repository.ParseObjectID(req.RelatedTo)
		if err != nil {
			return nil, err
		}
		m, err := model.ParseRelatedModel(req.OnModel)
		if err != nil {
			return nil, err
		}
		relation = model.Relation{RelatedTo: relatedOid, OnModel: m}
	}

	notification := &model.Notification{
		Recipient: recipientOid,
		Content:   req.Content,
		Type:      notificationType,
		Relation:  relation,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// GetNotifications 获取用户全部通知，按时间倒序
func (s *Service) GetNotifications(ctx context.Context, userId string) ([]model.Notification, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	return s.notificationRepo.FindByRecipient(ctx, oid)
}

// CountUnread 统计未读通知数
func (s *Service) CountUnread(ctx context.Context, userId string) (*respond.UnreadCountRespond, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	count, err := s.notificationRepo.CountUnread(ctx, oid)
	if err != nil {
		return nil, err
	}
	return &respond.UnreadCountRespond{Count: count}, nil
}

// MarkRead 将单条通知置为已读，仅接收者可操作，幂等
func (s *Service) MarkRead(ctx context.Context, userId, notificationId string) error {
	notification, err := s.loadForRecipient(ctx, userId, notificationId)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	return s.notificationRepo.MarkRead(ctx, notification.Id)
}

// MarkAllRead 将全部未读通知置为已读
func (s *Service) MarkAllRead(ctx context.Context, userId string) (*respond.MarkAllReadRespond, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	updated, err := s.notificationRepo.MarkAllRead(ctx, oid)
	if err != nil {
		return nil, err
	}
	return &respond.MarkAllReadRespond{Updated: updated}, nil
}

// DeleteNotification 删除通知，仅接收者可操作
func (s *Service) DeleteNotification(ctx context.Context, userId, notificationId string) error {
	notification, err := s.loadForRecipient(ctx, userId, notificationId)
	if err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, notification.Id)
}

// loadForRecipient 加载通知并校验请求方是接收者
func (s *Service) loadForRecipient(ctx context.Context, userId, notificationId string) (*model.Notification, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	notificationOid, err := repository.ParseObjectID(notificationId)
	if err != nil {
		return nil, err
	}
	notification, err := s.notificationRepo.FindById(ctx, notificationOid)
	if err != nil {
		return nil, err
	}
	if notification.Recipient != userOid {
		return nil, errorx.New(errorx.CodeForbidden, "仅接收者可操作该通知")
	}
	return notification, nil
}
