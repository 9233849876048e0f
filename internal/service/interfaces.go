// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"
	"mime/multipart"

	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/dto/respond"
	"mingle_chat_server/internal/model"
)

// AuthService 认证业务接口
// 处理登录、令牌刷新和请求方身份校验
type AuthService interface {
	// Login 密码登录，签发双令牌
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 校验刷新令牌并轮换双令牌
	RefreshToken(ctx context.Context, req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error)
	// Authenticate 校验请求方 id 对应的用户存在，返回该用户
	Authenticate(ctx context.Context, userId string) (*model.User, error)
	// Logout 吊销用户的刷新令牌
	Logout(ctx context.Context, userId string) error
}

// UserService 用户业务接口
// 处理注册、资料管理、搜索和联系人关系
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error)
	// GetUser 获取单个用户信息
	GetUser(ctx context.Context, userId string) (*respond.UserInfoRespond, error)
	// UpdateUser 更新用户资料
	UpdateUser(ctx context.Context, userId string, req request.UpdateUserRequest) (*respond.UserInfoRespond, error)
	// SearchUsers 按用户名/邮箱子串搜索用户（排除搜索者）
	SearchUsers(ctx context.Context, userId, query string) ([]respond.UserInfoRespond, error)
	// GetContacts 获取联系人列表
	GetContacts(ctx context.Context, userId string) ([]respond.UserInfoRespond, error)
	// AddContact 添加联系人（单向）
	AddContact(ctx context.Context, userId, contactId string) error
	// RemoveContact 移除联系人
	RemoveContact(ctx context.Context, userId, contactId string) error
}

// ChatService 聊天业务接口
// 成员/管理员一致性规则的唯一入口
type ChatService interface {
	// CreateChat 创建聊天，创建者自动成为成员和管理员
	CreateChat(ctx context.Context, creatorId string, req request.CreateChatRequest) (*model.Chat, error)
	// GetChats 获取用户所在的全部聊天
	GetChats(ctx context.Context, userId string) ([]model.Chat, error)
	// GetChat 获取单个聊天，仅成员可见
	GetChat(ctx context.Context, userId, chatId string) (*model.Chat, error)
	// UpdateChat 更新聊天信息，任意成员可操作
	UpdateChat(ctx context.Context, userId, chatId string, req request.UpdateChatRequest) (*model.Chat, error)
	// AddMember 添加成员，任意成员可操作
	AddMember(ctx context.Context, userId, chatId, memberId string) (*model.Chat, error)
	// RemoveMember 移除成员，仅管理员可操作，不允许移除自己
	RemoveMember(ctx context.Context, userId, chatId, memberId string) (*model.Chat, error)
	// AddManager 提升成员为管理员，任意成员可操作
	AddManager(ctx context.Context, userId, chatId, managerId string) (*model.Chat, error)
	// RemoveManager 撤销管理员身份，仅管理员可操作，不允许撤销自己
	RemoveManager(ctx context.Context, userId, chatId, managerId string) (*model.Chat, error)
	// LeaveChat 主动退出聊天，唯一管理员退出时移交权限，空聊天删除
	LeaveChat(ctx context.Context, userId, chatId string) error
	// DeleteChat 删除聊天，语义等同 LeaveChat
	DeleteChat(ctx context.Context, userId, chatId string) error
}

// MessageService 消息业务接口
// 处理消息发送、编辑、删除和已读跟踪
type MessageService interface {
	// SendMessage 发送文本消息，仅成员可发
	SendMessage(ctx context.Context, userId, chatId string, req request.SendMessageRequest) (*model.Message, error)
	// SendMediaMessage 发送携带附件的消息，附件经媒体存储落盘
	SendMediaMessage(ctx context.Context, userId, chatId, text string, file *multipart.FileHeader) (*model.Message, error)
	// GetMessages 获取聊天内全部未删除消息，仅成员可见
	GetMessages(ctx context.Context, userId, chatId string) ([]model.Message, error)
	// GetUnread 获取聊天内当前用户未读的消息
	GetUnread(ctx context.Context, userId, chatId string) ([]model.Message, error)
	// EditMessage 编辑消息文本，仅发送者可编辑，媒体消息不可编辑
	EditMessage(ctx context.Context, userId, messageId string, req request.EditMessageRequest) (*model.Message, error)
	// DeleteMessage 软删除消息，发送者或所在聊天管理员可操作
	DeleteMessage(ctx context.Context, userId, messageId string) error
	// MarkSeen 将单条消息标记为已读，幂等
	MarkSeen(ctx context.Context, userId, messageId string) error
	// MarkChatSeen 将聊天内全部未读消息标记为已读，返回标记条数
	MarkChatSeen(ctx context.Context, userId, chatId string) (int, error)
}

// MediaService 媒体业务接口
// 处理文件上传、可见性控制和流式读取
type MediaService interface {
	// UploadMedia 上传文件并登记元数据
	UploadMedia(ctx context.Context, userId string, file *multipart.FileHeader, req request.UploadMediaRequest) (*model.Media, error)
	// GetMedia 获取单个媒体元数据，受可见性约束
	GetMedia(ctx context.Context, userId, mediaId string) (*model.Media, error)
	// GetOwnMedia 获取用户自己上传的全部媒体
	GetOwnMedia(ctx context.Context, userId string) ([]model.Media, error)
	// GetMediaByRelation 按多态引用查询媒体，过滤不可见项
	GetMediaByRelation(ctx context.Context, userId, relatedTo, onModel string) ([]model.Media, error)
	// UpdateMedia 更新可见性或引用，仅上传者可操作
	UpdateMedia(ctx context.Context, userId, mediaId string, req request.UpdateMediaRequest) (*model.Media, error)
	// LinkToMessage 将媒体挂接到消息，仅上传者可操作
	LinkToMessage(ctx context.Context, userId, mediaId, messageId string) (*model.Media, error)
	// DeleteMedia 删除媒体及物理文件，仅上传者可操作
	DeleteMedia(ctx context.Context, userId, mediaId string) error
	// DownloadFile 按媒体 id 解析物理路径，受可见性约束
	DownloadFile(ctx context.Context, userId, mediaId string) (string, *model.Media, error)
	// ResolveFile 按文件名解析物理路径，受可见性约束
	ResolveFile(ctx context.Context, userId, filename string) (string, *model.Media, error)
}

// NotificationService 通知业务接口
// 处理通知创建、查询和已读状态
type NotificationService interface {
	// CreateNotification 创建通知
	CreateNotification(ctx context.Context, req request.CreateNotificationRequest) (*model.Notification, error)
	// GetNotifications 获取用户全部通知
	GetNotifications(ctx context.Context, userId string) ([]model.Notification, error)
	// CountUnread 统计未读通知数
	CountUnread(ctx context.Context, userId string) (*respond.UnreadCountRespond, error)
	// MarkRead 将单条通知置为已读，仅接收者可操作
	MarkRead(ctx context.Context, userId, notificationId string) error
	// MarkAllRead 将全部未读通知置为已读
	MarkAllRead(ctx context.Context, userId string) (*respond.MarkAllReadRespond, error)
	// DeleteNotification 删除通知，仅接收者可操作
	DeleteNotification(ctx context.Context, userId, notificationId string) error
}
