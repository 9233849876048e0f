// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"

	"mingle_chat_server/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindById 根据 ObjectID 查找用户
	FindById(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	// FindByIds 批量根据 ObjectID 查找用户
	FindByIds(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error)
	// FindByLogin 根据用户名或邮箱查找用户
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	// ExistsByUsernameOrEmail 检查用户名或邮箱是否已被占用
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Search 按用户名/邮箱子串搜索用户（大小写不敏感，排除指定用户）
	Search(ctx context.Context, query string, exclude primitive.ObjectID) ([]model.User, error)
	// Create 创建新用户
	Create(ctx context.Context, user *model.User) error
	// Update 整体更新用户文档
	Update(ctx context.Context, user *model.User) error
	// AddContact 向联系人集合追加引用（$addToSet）
	AddContact(ctx context.Context, userId, contactId primitive.ObjectID) error
	// RemoveContact 从联系人集合移除引用（$pull）
	RemoveContact(ctx context.Context, userId, contactId primitive.ObjectID) error
	// AddChatRef 向用户的聊天集合追加引用（$addToSet）
	AddChatRef(ctx context.Context, userId, chatId primitive.ObjectID) error
	// RemoveChatRef 从用户的聊天集合移除引用（$pull）
	RemoveChatRef(ctx context.Context, userId, chatId primitive.ObjectID) error
}

// ChatRepository 聊天数据访问接口
type ChatRepository interface {
	// FindById 根据 ObjectID 查找聊天
	FindById(ctx context.Context, id primitive.ObjectID) (*model.Chat, error)
	// FindByMember 查找成员集合包含指定用户的所有聊天
	FindByMember(ctx context.Context, userId primitive.ObjectID) ([]model.Chat, error)
	// Create 创建新聊天
	Create(ctx context.Context, chat *model.Chat) error
	// Update 整体更新聊天文档（读-改-写）
	Update(ctx context.Context, chat *model.Chat) error
	// AppendMessage 向消息列表追加消息引用（$push）
	AppendMessage(ctx context.Context, chatId, messageId primitive.ObjectID) error
	// Delete 物理删除聊天文档
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindById 根据 ObjectID 查找消息
	FindById(ctx context.Context, id primitive.ObjectID) (*model.Message, error)
	// FindByChat 查找聊天内全部未删除消息，按创建时间升序
	FindByChat(ctx context.Context, chatId primitive.ObjectID) ([]model.Message, error)
	// FindUnread 查找聊天内指定用户未读的未删除消息，按创建时间升序
	FindUnread(ctx context.Context, chatId, userId primitive.ObjectID) ([]model.Message, error)
	// Create 创建新消息
	Create(ctx context.Context, message *model.Message) error
	// Update 整体更新消息文档
	Update(ctx context.Context, message *model.Message) error
	// AddSeenBy 向已读集合追加用户引用（$addToSet）
	AddSeenBy(ctx context.Context, messageId, userId primitive.ObjectID) error
}

// MediaRepository 媒体元数据访问接口
type MediaRepository interface {
	// FindById 根据 ObjectID 查找媒体
	FindById(ctx context.Context, id primitive.ObjectID) (*model.Media, error)
	// FindByFilename 根据系统文件名查找媒体
	FindByFilename(ctx context.Context, filename string) (*model.Media, error)
	// FindByUploader 查找用户上传的全部媒体，按创建时间降序
	FindByUploader(ctx context.Context, userId primitive.ObjectID) ([]model.Media, error)
	// FindByRelation 按多态引用查找媒体，按创建时间降序
	FindByRelation(ctx context.Context, relatedTo primitive.ObjectID, onModel model.RelatedModel) ([]model.Media, error)
	// Create 创建媒体元数据
	Create(ctx context.Context, media *model.Media) error
	// Update 整体更新媒体元数据
	Update(ctx context.Context, media *model.Media) error
	// Delete 物理删除媒体元数据
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	// FindById 根据 ObjectID 查找通知
	FindById(ctx context.Context, id primitive.ObjectID) (*model.Notification, error)
	// FindByRecipient 查找用户的全部通知，按创建时间降序
	FindByRecipient(ctx context.Context, userId primitive.ObjectID) ([]model.Notification, error)
	// CountUnread 统计用户未读通知数
	CountUnread(ctx context.Context, userId primitive.ObjectID) (int64, error)
	// Create 创建通知
	Create(ctx context.Context, notification *model.Notification) error
	// MarkRead 将单条通知置为已读
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	// MarkAllRead 将用户全部未读通知置为已读，返回更新条数
	MarkAllRead(ctx context.Context, userId primitive.ObjectID) (int64, error)
	// Delete 物理删除通知
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db           *mongo.Database        // MongoDB 数据库实例
	User         UserRepository         // 用户 Repository
	Chat         ChatRepository         // 聊天 Repository
	Message      MessageRepository      // 消息 Repository
	Media        MediaRepository        // 媒体 Repository
	Notification NotificationRepository // 通知 Repository
}

// NewRepositories 创建所有 Repository 实例
// db: MongoDB 数据库实例
func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		db:           db,
		User:         NewUserRepository(db),
		Chat:         NewChatRepository(db),
		Message:      NewMessageRepository(db),
		Media:        NewMediaRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
