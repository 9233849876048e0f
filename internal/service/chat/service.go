// Package chat 提供聊天相关的业务逻辑
// 成员/管理员一致性规则全部在此实现：
//   - 管理员永远是成员的子集
//   - 只要还有成员，就至少保留一名管理员（退出路径负责移交）
//   - 最后一名成员退出后聊天被删除
package chat

import (
	"context"
	"encoding/json"
	"time"

	"mingle_chat_server/internal/dao/mongodb/repository"
	myredis "mingle_chat_server/internal/dao/redis"
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/infrastructure/mq"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/pkg/constants"
	"mingle_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// chatListKey 用户聊天列表的缓存键
func chatListKey(userId string) string {
	return "chat_list:" + userId
}

// Service 聊天服务实现
type Service struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	cache    myredis.AsyncCacheService
	queue    mq.NotificationQueue
}

// NewChatService 创建聊天服务实例
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, cache myredis.AsyncCacheService, queue mq.NotificationQueue) *Service {
	return &Service{
		chatRepo: chatRepo,
		userRepo: userRepo,
		cache:    cache,
		queue:    queue,
	}
}

// invalidateChatLists 异步失效所有受影响成员的聊天列表缓存
func (s *Service) invalidateChatLists(memberIds []primitive.ObjectID) {
	ids := make([]primitive.ObjectID, len(memberIds))
	copy(ids, memberIds)
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, id := range ids {
			if err := s.cache.Delete(ctx, chatListKey(id.Hex())); err != nil {
				zap.L().Warn("invalidate chat list cache failed", zap.String("user_id", id.Hex()), zap.Error(err))
			}
		}
	})
}

// notifyAdded 向被拉入聊天的用户发布通知事件
func (s *Service) notifyAdded(ctx context.Context, chat *model.Chat, recipient primitive.ObjectID, actorName string) {
	event := &mq.NotificationEvent{
		Recipient: recipient,
		Content:   actorName + " 将你加入了聊天 " + chat.Name,
		Type:      model.NotificationSystem,
		RelatedTo: chat.Id,
		OnModel:   model.RelatedChat,
	}
	if err := s.queue.Publish(ctx, event); err != nil {
		zap.L().Warn("publish chat notification failed", zap.Error(err))
	}
}

// CreateChat 创建聊天
// 创建者自动成为成员和管理员；初始成员列表去重后校验存在性
func (s *Service) CreateChat(ctx context.Context, creatorId string, req request.CreateChatRequest) (*model.Chat, error) {
	creatorOid, err := repository.ParseObjectID(creatorId)
	if err != nil {
		return nil, err
	}
	creator, err := s.userRepo.FindById(ctx, creatorOid)
	if err != nil {
		return nil, err
	}

	// 组装成员集合：创建者始终在首位，其余去重
	members := []primitive.ObjectID{creatorOid}
	seen := map[primitive.ObjectID]bool{creatorOid: true}
	for _, m := range req.Members {
		oid, err := repository.ParseObjectID(m)
		if err != nil {
			return nil, err
		}
		if seen[oid] {
			continue
		}
		if _, err := s.userRepo.FindById(ctx, oid); err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.Newf(errorx.CodeUserNotExist, "用户 %s 不存在", m)
			}
			return nil, err
		}
		seen[oid] = true
		members = append(members, oid)
	}

	chat := &model.Chat{
		Name:        req.Name,
		Description: req.Description,
		IsGroup:     req.IsGroup,
		Managers:    []primitive.ObjectID{creatorOid},
		Members:     members,
		Messages:    []primitive.ObjectID{},
		Photo:       req.Photo,
		CreatedAt:   time.Now(),
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	// 维护成员的聊天引用，并通知被拉入的成员
	for _, m := range members {
		if err := s.userRepo.AddChatRef(ctx, m, chat.Id); err != nil {
			zap.L().Warn("add chat ref failed", zap.String("user_id", m.Hex()), zap.Error(err))
		}
		if m != creatorOid {
			s.notifyAdded(ctx, chat, m, creator.Username)
		}
	}
	s.invalidateChatLists(members)

	zap.L().Info("chat created", zap.String("chat_id", chat.Id.Hex()), zap.String("creator", creatorId))
	return chat, nil
}

// GetChats 获取用户所在的全部聊天
// 先查缓存，未命中时回源并写入缓存
func (s *Service) GetChats(ctx context.Context, userId string) ([]model.Chat, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, chatListKey(userId))
	if err == nil && cached != "" {
		var chats []model.Chat
		if err := json.Unmarshal([]byte(cached), &chats); err == nil {
			return chats, nil
		}
		// 缓存内容损坏，删除后回源
		_ = s.cache.Delete(ctx, chatListKey(userId))
	}

	chats, err := s.chatRepo.FindByMember(ctx, oid)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(chats); err == nil {
		ttl := time.Duration(constants.CHAT_LIST_CACHE_TTL_MIN) * time.Minute
		if err := s.cache.Set(ctx, chatListKey(userId), string(data), ttl); err != nil {
			zap.L().Warn("cache chat list failed", zap.Error(err))
		}
	}
	return chats, nil
}

// GetChat 获取单个聊天，仅成员可见
func (s *Service) GetChat(ctx context.Context, userId, chatId string) (*model.Chat, error) {
	chat, userOid, err := s.loadChatForUser(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.IsMember(userOid) {
		return nil, errorx.New(errorx.CodeForbidden, "仅聊天成员可查看该聊天")
	}
	return chat, nil
}

// UpdateChat 更新聊天信息，任意成员可操作
// 指针字段为 nil 时保持原值；头像仅群聊可设置
func (s *Service) UpdateChat(ctx context.Context, userId, chatId string, req request.UpdateChatRequest) (*model.Chat, error) {
	chat, userOid, err := s.loadChatForUser(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.IsMember(userOid) {
		return nil, errorx.New(errorx.CodeForbidden, "仅聊天成员可修改聊天信息")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, errorx.New(errorx.CodeValidation, "聊天名称不能为空")
		}
		chat.Name = *req.Name
	}
	if req.Description != nil {
		chat.Description = *req.Description
	}
	if req.Photo != nil {
		if !chat.IsGroup {
			return nil, errorx.New(errorx.CodeValidation, "仅群聊支持设置头像")
		}
		chat.Photo = *req.Photo
	}
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	s.invalidateChatLists(chat.Members)
	return chat, nil
}

// AddMember 添加成员，任意成员均可操作
func (s *Service) AddMember(ctx context.Context, userId, chatId, memberId string) (*model.Chat, error) {
	chat, userOid, err := s.loadChatForUser(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.IsMember(userOid) {
		return nil, errorx.New(errorx.CodeForbidden, "仅聊天成员可添加成员")
	}

	memberOid, err := repository.ParseObjectID(memberId)
	if err != nil {
		return nil, err
	}
	if chat.IsMember(memberOid) {
		return nil, errorx.New(errorx.CodeConflict, "该用户已是聊天成员")
	}
	actor, err := s.userRepo.FindById(ctx, userOid)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindById(ctx, memberOid); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeUserNotExist, "用户 %s 不存在", memberId)
		}
		return nil, err
	}

	chat.Members = append(chat.Members, memberOid)
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddChatRef(ctx, memberOid, chat.Id); err != nil {
		zap.L().Warn("add chat ref failed", zap.String("user_id", memberId), zap.Error(err))
	}
	s.notifyAdded(ctx, chat, memberOid, actor.Username)
	s.invalidateChatLists(chat.Members)
	return chat, nil
}

// RemoveMember 移除成员，仅管理员可操作
// 不允许通过此操作移除自己（退出请走 LeaveChat）
// 被移除的成员同时失去管理员身份
func (s *Service) RemoveMember(ctx context.Context, userId, chatId, memberId string) (*model.Chat, error) {
	chat, userOid, err := s.loadChatForUser(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.IsManager(userOid) {
		return nil, errorx.New(errorx.CodeForbidden, "仅管理员可移除成员")
	}

	memberOid, err := repository.ParseObjectID(memberId)
	if err != nil {
		return nil, err
	}
	if memberOid == userOid {
		return nil, errorx.New(errorx.CodeConflict, "不能移除自己，请使用退出聊天")
	}
	if !chat.IsMember(memberOid) {
		return nil, errorx.New(errorx.CodeNotFound, "该用户不是聊天成员")
	}

	before := chat.Members
	chat.RemoveMember(memberOid)
	chat.RemoveManager(memberOid)
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	if err := s.userRepo.RemoveChatRef(ctx, memberOid, chat.Id); err != nil {
		zap.L().Warn("remove chat ref failed", zap.String("user_id", memberId), zap.Error(err))
	}
	s.invalidateChatLists(before)
	return chat, nil
}

// AddManager 提升成员为管理员，任意成员均可操作
// 目标必须已是成员
func (s *Service) AddManager(ctx context.Context, userId, chatId, managerId string) (*model.Chat, error) {
	chat, userOid, err := s.loadChatForUser(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.IsMember(userOid) {
		return nil, errorx.New(errorx.CodeForbidden, "仅聊天成员可设置管理员")
	}

	managerOid, err := repository.ParseObjectID(managerId)
	if err != nil {
		return nil, err
	}
	if !chat.IsMember(managerOid) {
		return nil, errorx.New(errorx.CodeConflict, "目标用户不是聊天成员")
	}
	if chat.IsManager(managerOid) {
		return nil, errorx.New(errorx.CodeConflict, "该用户已是管理员")
	}

	chat.Managers = append(chat.Managers, managerOid)
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	s.invalidateChatLists(chat.Members)
	return chat, nil
}

// RemoveManager 撤销管理员身份，仅管理员可操作
// 不允许撤销自己；被撤销者仍是普通成员
func (s *Service) RemoveManager(ctx context.Context, userId, chatId, managerId string) (*model.Chat, error) {
	chat, userOid, err := s.loadChatForUser(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.IsManager(userOid) {
		return nil, errorx.New(errorx.CodeForbidden, "仅管理员可撤销管理员")
	}

	managerOid, err := repository.ParseObjectID(managerId)
	if err != nil {
		return nil, err
	}
	if managerOid == userOid {
		return nil, errorx.New(errorx.CodeConflict, "不能撤销自己的管理员身份")
	}
	if !chat.IsManager(managerOid) {
		return nil, errorx.New(errorx.CodeNotFound, "该用户不是管理员")
	}

	chat.RemoveManager(managerOid)
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	s.invalidateChatLists(chat.Members)
	return chat, nil
}

// LeaveChat 主动退出聊天
// 唯一管理员退出时移交给剩余成员中的第一位；最后一名成员退出后删除聊天
func (s *Service) LeaveChat(ctx context.Context, userId, chatId string) error {
	chat, userOid, err := s.loadChatForUser(ctx, userId, chatId)
	if err != nil {
		return err
	}
	if !chat.IsMember(userOid) {
		return errorx.New(errorx.CodeForbidden, "不是聊天成员，无法退出")
	}

	before := chat.Members
	chat.RemoveMember(userOid)
	chat.RemoveManager(userOid)

	if err := s.userRepo.RemoveChatRef(ctx, userOid, chat.Id); err != nil {
		zap.L().Warn("remove chat ref failed", zap.String("user_id", userId), zap.Error(err))
	}

	if len(chat.Members) == 0 {
		// 最后一名成员离开，聊天整体删除
		if err := s.chatRepo.Delete(ctx, chat.Id); err != nil {
			return err
		}
		s.invalidateChatLists(before)
		zap.L().Info("chat deleted after last member left", zap.String("chat_id", chat.Id.Hex()))
		return nil
	}

	// 管理员集合被清空时移交给剩余成员中的第一位
	if len(chat.Managers) == 0 {
		chat.Managers = []primitive.ObjectID{chat.Members[0]}
		zap.L().Info("chat manager handed over",
			zap.String("chat_id", chat.Id.Hex()),
			zap.String("new_manager", chat.Members[0].Hex()))
	}

	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return err
	}
	s.invalidateChatLists(before)
	return nil
}

// DeleteChat 删除聊天
// 对单个成员而言语义等同于退出：成员逐个离开，最后一人离开时物理删除
func (s *Service) DeleteChat(ctx context.Context, userId, chatId string) error {
	return s.LeaveChat(ctx, userId, chatId)
}

// loadChatForUser 解析双方 id 并加载聊天
func (s *Service) loadChatForUser(ctx context.Context, userId, chatId string) (*model.Chat, primitive.ObjectID, error) {
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
	return chat, userOid, nil
}
