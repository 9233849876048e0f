// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"mingle_chat_server/internal/dao/mongodb/repository"
	myredis "mingle_chat_server/internal/dao/redis"
	"mingle_chat_server/internal/infrastructure/filestore"
	"mingle_chat_server/internal/infrastructure/mq"
	"mingle_chat_server/internal/service/auth"
	"mingle_chat_server/internal/service/chat"
	"mingle_chat_server/internal/service/media"
	"mingle_chat_server/internal/service/message"
	"mingle_chat_server/internal/service/notification"
	"mingle_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	Auth         AuthService         // 认证 Service
	User         UserService         // 用户 Service
	Chat         ChatService         // 聊天 Service
	Message      MessageService      // 消息 Service
	Media        MediaService        // 媒体 Service
	Notification NotificationService // 通知 Service
}

// NewServices 创建并注入所有 Service 实例
// repos: Repository 层聚合
// cache: Redis 缓存服务
// queue: 通知事件队列
// store: 媒体文件存储
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, queue mq.NotificationQueue, store *filestore.Store) *Services {
	authSvc := auth.NewAuthService(repos.User, cache)
	userSvc := user.NewUserService(repos.User)
	chatSvc := chat.NewChatService(repos.Chat, repos.User, cache, queue)
	mediaSvc := media.NewMediaService(repos.Media, store)
	messageSvc := message.NewMessageService(repos.Message, repos.Chat, repos.User, mediaSvc, queue, cache)
	notificationSvc := notification.NewNotificationService(repos.Notification)

	return &Services{
		Auth:         authSvc,
		User:         userSvc,
		Chat:         chatSvc,
		Message:      messageSvc,
		Media:        mediaSvc,
		Notification: notificationSvc,
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.Chat.CreateChat() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository 初始化之后
func InitServices(repos *repository.Repositories, cache myredis.AsyncCacheService, queue mq.NotificationQueue, store *filestore.Store) {
	Svc = NewServices(repos, cache, queue, store)
}
