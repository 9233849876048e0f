// Package message 提供消息相关的业务逻辑
// 处理发送、编辑、软删除和已读跟踪
// 消息策略：仅发送者可编辑且仅限纯文本；发送者或管理员可删除；
// 删除是软删除，记录保留但内容与媒体摘除
package message

import (
	"context"
	"mime/multipart"
	"path"
	"time"

	"mingle_chat_server/internal/dao/mongodb/repository"
	myredis "mingle_chat_server/internal/dao/redis"
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/infrastructure/mq"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/internal/service/media"

	"mingle_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service 消息服务实现
type Service struct {
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	mediaSvc    *media.Service
	queue       mq.NotificationQueue
	cache       myredis.AsyncCacheService
}

// NewMessageService 创建消息服务实例
func NewMessageService(messageRepo repository.MessageRepository, chatRepo repository.ChatRepository, userRepo repository.UserRepository, mediaSvc *media.Service, queue mq.NotificationQueue, cache myredis.AsyncCacheService) *Service {
	return &Service{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		mediaSvc:    mediaSvc,
		queue:       queue,
		cache:       cache,
	}
}

// SendMessage 发送文本消息，仅成员可发
func (s *Service) SendMessage(ctx context.Context, userId, chatId string, req request.SendMessageRequest) (*model.Message, error) {
	chat, senderOid, err := s.loadChatAsMember(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ChatId:      chat.Id,
		Sender:      senderOid,
		Text:        req.Text,
		MediaType:   model.MediaNone,
		SeenBy:      []primitive.ObjectID{senderOid},
		CreatedAt:   time.Now(),
		State:       model.MessageActive,
		IsForwarded: req.IsForwarded,
	}
	if err := s.persistAndFanOut(ctx, chat, message); err != nil {
		return nil, err
	}
	return message, nil
}

// SendMediaMessage 发送携带附件的消息
// 附件先经媒体存储落盘并登记，消息引用其访问地址
func (s *Service) SendMediaMessage(ctx context.Context, userId, chatId, text string, file *multipart.FileHeader) (*model.Message, error) {
	chat, senderOid, err := s.loadChatAsMember(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "缺少附件文件")
	}

	relation := model.Relation{RelatedTo: chat.Id, OnModel: model.RelatedChat}
	m, err := s.mediaSvc.StoreFile(ctx, senderOid, file, relation, true)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ChatId:    chat.Id,
		Sender:    senderOid,
		Text:      text,
		MediaType: model.MediaTypeFromMime(m.Mimetype),
		MediaUrl:  m.Url,
		FileName:  m.OriginalName,
		SeenBy:    []primitive.ObjectID{senderOid},
		CreatedAt: time.Now(),
		State:     model.MessageActive,
	}
	if err := s.persistAndFanOut(ctx, chat, message); err != nil {
		return nil, err
	}

	// 附件引用从聊天改指向消息本身
	if _, err := s.mediaSvc.LinkToMessage(ctx, userId, m.Id.Hex(), message.Id.Hex()); err != nil {
		zap.L().Warn("link media to message failed",
			zap.String("media_id", m.Id.Hex()), zap.Error(err))
	}
	return message, nil
}

// persistAndFanOut 持久化消息并挂接到聊天，随后向其余成员发布通知
// 挂接失败时将已写入的消息标记为删除，避免产生游离记录
func (s *Service) persistAndFanOut(ctx context.Context, chat *model.Chat, message *model.Message) error {
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return err
	}
	if err := s.chatRepo.AppendMessage(ctx, chat.Id, message.Id); err != nil {
		// 补偿：消息已落库但未挂接，标记删除后报告失败
		message.State = model.MessageDeleted
		if markErr := s.messageRepo.Update(ctx, message); markErr != nil {
			zap.L().Error("mark orphan message deleted failed",
				zap.String("message_id", message.Id.Hex()), zap.Error(markErr))
		}
		return err
	}

	sender, err := s.userRepo.FindById(ctx, message.Sender)
	if err != nil {
		zap.L().Warn("load sender for notification failed", zap.Error(err))
		sender = &model.User{Username: "某位成员"}
	}
	for _, member := range chat.Members {
		if member == message.Sender {
			continue
		}
		event := &mq.NotificationEvent{
			Recipient: member,
			Content:   sender.Username + " 在 " + chat.Name + " 发来新消息",
			Type:      model.NotificationMessage,
			RelatedTo: message.Id,
			OnModel:   model.RelatedMessage,
		}
		if err := s.queue.Publish(ctx, event); err != nil {
			zap.L().Warn("publish message notification failed", zap.Error(err))
		}
	}
	s.invalidateChatLists(chat.Members)
	return nil
}

// GetMessages 获取聊天内全部未删除消息，仅成员可见
func (s *Service) GetMessages(ctx context.Context, userId, chatId string) ([]model.Message, error) {
	chat, _, err := s.loadChatAsMember(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.FindByChat(ctx, chat.Id)
}

// GetUnread 获取聊天内当前用户未读的消息
func (s *Service) GetUnread(ctx context.Context, userId, chatId string) ([]model.Message, error) {
	chat, userOid, err := s.loadChatAsMember(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.FindUnread(ctx, chat.Id, userOid)
}

// EditMessage 编辑消息文本
// 仅发送者可编辑；已删除或携带媒体的消息不可编辑
func (s *Service) EditMessage(ctx context.Context, userId, messageId string, req request.EditMessageRequest) (*model.Message, error) {
	message, userOid, err := s.loadMessage(ctx, userId, messageId)
	if err != nil {
		return nil, err
	}
	if message.IsDeleted() {
		return nil, errorx.New(errorx.CodeConflict, "消息已删除，无法编辑")
	}
	if message.Sender != userOid {
		return nil, errorx.New(errorx.CodeForbidden, "仅发送者可编辑消息")
	}
	if message.HasMedia() {
		return nil, errorx.New(errorx.CodeConflict, "媒体消息不支持编辑")
	}

	now := time.Now()
	message.Text = req.Text
	message.UpdatedAt = &now
	if err := s.messageRepo.Update(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// DeleteMessage 软删除消息
// 发送者或所在聊天的管理员可操作；重复删除返回冲突
func (s *Service) DeleteMessage(ctx context.Context, userId, messageId string) error {
	message, userOid, err := s.loadMessage(ctx, userId, messageId)
	if err != nil {
		return err
	}
	if message.IsDeleted() {
		return errorx.New(errorx.CodeConflict, "消息已被删除")
	}

	if message.Sender != userOid {
		chat, err := s.chatRepo.FindById(ctx, message.ChatId)
		if err != nil {
			return err
		}
		if !chat.IsManager(userOid) {
			return errorx.New(errorx.CodeForbidden, "仅发送者或管理员可删除消息")
		}
	}

	// 携带附件时尽力清理媒体记录和物理文件
	if message.HasMedia() && message.MediaUrl != "" {
		s.mediaSvc.CleanupByFilename(ctx, path.Base(message.MediaUrl))
	}

	now := time.Now()
	message.State = model.MessageDeleted
	message.Text = ""
	message.MediaType = model.MediaNone
	message.MediaUrl = ""
	message.FileName = ""
	message.UpdatedAt = &now
	if err := s.messageRepo.Update(ctx, message); err != nil {
		return err
	}
	zap.L().Info("message deleted",
		zap.String("message_id", message.Id.Hex()), zap.String("by", userId))
	return nil
}

// MarkSeen 将单条消息标记为已读，幂等
// 仅消息所在聊天的成员可操作
func (s *Service) MarkSeen(ctx context.Context, userId, messageId string) error {
	message, userOid, err := s.loadMessage(ctx, userId, messageId)
	if err != nil {
		return err
	}
	chat, err := s.chatRepo.FindById(ctx, message.ChatId)
	if err != nil {
		return err
	}
	if !chat.IsMember(userOid) {
		return errorx.New(errorx.CodeForbidden, "仅聊天成员可标记已读")
	}
	if message.SeenByUser(userOid) {
		return nil
	}
	return s.messageRepo.AddSeenBy(ctx, message.Id, userOid)
}

// MarkChatSeen 将聊天内全部未读消息标记为已读，返回标记条数
func (s *Service) MarkChatSeen(ctx context.Context, userId, chatId string) (int, error) {
	chat, userOid, err := s.loadChatAsMember(ctx, userId, chatId)
	if err != nil {
		return 0, err
	}
	unread, err := s.messageRepo.FindUnread(ctx, chat.Id, userOid)
	if err != nil {
		return 0, err
	}
	for i := range unread {
		if err := s.messageRepo.AddSeenBy(ctx, unread[i].Id, userOid); err != nil {
			return i, err
		}
	}
	return len(unread), nil
}

// loadChatAsMember 加载聊天并要求请求方是成员
func (s *Service) loadChatAsMember(ctx context.Context, userId, chatId string) (*model.Chat, primitive.ObjectID, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	chatOid, err := repository.ParseObjectID(chatId)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	chat, err := s.chatRepo.FindById(ctx, chatOid)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if !chat.IsMember(userOid) {
		return nil, primitive.NilObjectID, errorx.New(errorx.CodeForbidden, "仅聊天成员可执行该操作")
	}
	return chat, userOid, nil
}

// loadMessage 解析 id 并加载消息
func (s *Service) loadMessage(ctx context.Context, userId, messageId string) (*model.Message, primitive.ObjectID, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	messageOid, err := repository.ParseObjectID(messageId)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	message, err := s.messageRepo.FindById(ctx, messageOid)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	return message, userOid, nil
}

// invalidateChatLists 异步失效成员的聊天列表缓存
func (s *Service) invalidateChatLists(memberIds []primitive.ObjectID) {
	ids := make([]primitive.ObjectID, len(memberIds))
	copy(ids, memberIds)
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, id := range ids {
			if err := s.cache.Delete(ctx, "chat_list:"+id.Hex()); err != nil {
				zap.L().Warn("invalidate chat list cache failed", zap.String("user_id", id.Hex()), zap.Error(err))
			}
		}
	})
}
