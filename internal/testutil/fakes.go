// Package testutil 提供服务层测试用的内存实现
// 覆盖 Repository、缓存和通知队列三类依赖，行为与真实实现的约定保持一致
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"mingle_chat_server/internal/infrastructure/mq"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notFound 构造与 mongo 实现一致的未找到错误
func notFound(what string) error {
	return errorx.Newf(errorx.CodeNotFound, "%s not found", what)
}

// ==================== 用户 ====================

// MemUserRepo 用户 Repository 的内存实现
type MemUserRepo struct {
	mu    sync.Mutex
	Users map[primitive.ObjectID]*model.User
}

// NewMemUserRepo 创建空的用户存储
func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{Users: make(map[primitive.ObjectID]*model.User)}
}

// Put 直接放入一个用户（测试预置数据用）
func (r *MemUserRepo) Put(u *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.Id.IsZero() {
		u.Id = primitive.NewObjectID()
	}
	r.Users[u.Id] = u
}

func (r *MemUserRepo) FindById(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, notFound("user")
	}
	cp := *u
	return &cp, nil
}

func (r *MemUserRepo) FindByIds(_ context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.Users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *MemUserRepo) FindByLogin(_ context.Context, login string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Username == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (r *MemUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemUserRepo) Search(_ context.Context, query string, exclude primitive.ObjectID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.User
	for _, u := range r.Users {
		if u.Id == exclude {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *MemUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Id = primitive.NewObjectID()
	cp := *user
	r.Users[user.Id] = &cp
	return nil
}

func (r *MemUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[user.Id]; !ok {
		return notFound("user")
	}
	cp := *user
	r.Users[user.Id] = &cp
	return nil
}

func (r *MemUserRepo) AddContact(_ context.Context, userId, contactId primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[userId]
	if !ok {
		return notFound("user")
	}
	for _, c := range u.Contacts {
		if c == contactId {
			return nil
		}
	}
	u.Contacts = append(u.Contacts, contactId)
	return nil
}

func (r *MemUserRepo) RemoveContact(_ context.Context, userId, contactId primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[userId]
	if !ok {
		return notFound("user")
	}
	out := u.Contacts[:0]
	for _, c := range u.Contacts {
		if c != contactId {
			out = append(out, c)
		}
	}
	u.Contacts = out
	return nil
}

func (r *MemUserRepo) AddChatRef(_ context.Context, userId, chatId primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[userId]
	if !ok {
		return notFound("user")
	}
	for _, c := range u.Chats {
		if c == chatId {
			return nil
		}
	}
	u.Chats = append(u.Chats, chatId)
	return nil
}

func (r *MemUserRepo) RemoveChatRef(_ context.Context, userId, chatId primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[userId]
	if !ok {
		return notFound("user")
	}
	out := u.Chats[:0]
	for _, c := range u.Chats {
		if c != chatId {
			out = append(out, c)
		}
	}
	u.Chats = out
	return nil
}

// ==================== 聊天 ====================

// MemChatRepo 聊天 Repository 的内存实现
// FailAppend 置为 true 时 AppendMessage 返回错误，用于补偿路径测试
type MemChatRepo struct {
	mu         sync.Mutex
	Chats      map[primitive.ObjectID]*model.Chat
	FailAppend bool
}

// NewMemChatRepo 创建空的聊天存储
func NewMemChatRepo() *MemChatRepo {
	return &MemChatRepo{Chats: make(map[primitive.ObjectID]*model.Chat)}
}

// Put 直接放入一个聊天（测试预置数据用）
func (r *MemChatRepo) Put(c *model.Chat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Id.IsZero() {
		c.Id = primitive.NewObjectID()
	}
	r.Chats[c.Id] = c
}

func (r *MemChatRepo) FindById(_ context.Context, id primitive.ObjectID) (*model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Chats[id]
	if !ok {
		return nil, notFound("chat")
	}
	cp := *c
	return &cp, nil
}

func (r *MemChatRepo) FindByMember(_ context.Context, userId primitive.ObjectID) ([]model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Chat
	for _, c := range r.Chats {
		if c.IsMember(userId) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *MemChatRepo) Create(_ context.Context, chat *model.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat.Id = primitive.NewObjectID()
	cp := *chat
	r.Chats[chat.Id] = &cp
	return nil
}

func (r *MemChatRepo) Update(_ context.Context, chat *model.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Chats[chat.Id]; !ok {
		return notFound("chat")
	}
	cp := *chat
	r.Chats[chat.Id] = &cp
	return nil
}

func (r *MemChatRepo) AppendMessage(_ context.Context, chatId, messageId primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAppend {
		return errorx.New(errorx.CodeDBError, "append message failed")
	}
	c, ok := r.Chats[chatId]
	if !ok {
		return notFound("chat")
	}
	c.Messages = append(c.Messages, messageId)
	return nil
}

func (r *MemChatRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Chats[id]; !ok {
		return notFound("chat")
	}
	delete(r.Chats, id)
	return nil
}

// ==================== 消息 ====================

// MemMessageRepo 消息 Repository 的内存实现
type MemMessageRepo struct {
	mu       sync.Mutex
	Messages map[primitive.ObjectID]*model.Message
}

// NewMemMessageRepo 创建空的消息存储
func NewMemMessageRepo() *MemMessageRepo {
	return &MemMessageRepo{Messages: make(map[primitive.ObjectID]*model.Message)}
}

// Put 直接放入一条消息（测试预置数据用）
func (r *MemMessageRepo) Put(m *model.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.Id.IsZero() {
		m.Id = primitive.NewObjectID()
	}
	r.Messages[m.Id] = m
}

func (r *MemMessageRepo) FindById(_ context.Context, id primitive.ObjectID) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Messages[id]
	if !ok {
		return nil, notFound("message")
	}
	cp := *m
	return &cp, nil
}

func (r *MemMessageRepo) FindByChat(_ context.Context, chatId primitive.ObjectID) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for _, m := range r.Messages {
		if m.ChatId == chatId && m.State == model.MessageActive {
			out = append(out, *m)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *MemMessageRepo) FindUnread(_ context.Context, chatId, userId primitive.ObjectID) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for _, m := range r.Messages {
		if m.ChatId == chatId && m.State == model.MessageActive && !m.SeenByUser(userId) {
			out = append(out, *m)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *MemMessageRepo) Create(_ context.Context, message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.Id = primitive.NewObjectID()
	cp := *message
	r.Messages[message.Id] = &cp
	return nil
}

func (r *MemMessageRepo) Update(_ context.Context, message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Messages[message.Id]; !ok {
		return notFound("message")
	}
	cp := *message
	r.Messages[message.Id] = &cp
	return nil
}

func (r *MemMessageRepo) AddSeenBy(_ context.Context, messageId, userId primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Messages[messageId]
	if !ok {
		return notFound("message")
	}
	if !m.SeenByUser(userId) {
		m.SeenBy = append(m.SeenBy, userId)
	}
	return nil
}

func sortByCreatedAt(messages []model.Message) {
	for i := 1; i < len(messages); i++ {
		for j := i; j > 0 && messages[j].CreatedAt.Before(messages[j-1].CreatedAt); j-- {
			messages[j], messages[j-1] = messages[j-1], messages[j]
		}
	}
}

// ==================== 媒体 ====================

// MemMediaRepo 媒体 Repository 的内存实现
type MemMediaRepo struct {
	mu     sync.Mutex
	Medias map[primitive.ObjectID]*model.Media
}

// NewMemMediaRepo 创建空的媒体存储
func NewMemMediaRepo() *MemMediaRepo {
	return &MemMediaRepo{Medias: make(map[primitive.ObjectID]*model.Media)}
}

// Put 直接放入一条媒体记录（测试预置数据用）
func (r *MemMediaRepo) Put(m *model.Media) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.Id.IsZero() {
		m.Id = primitive.NewObjectID()
	}
	r.Medias[m.Id] = m
}

func (r *MemMediaRepo) FindById(_ context.Context, id primitive.ObjectID) (*model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Medias[id]
	if !ok {
		return nil, notFound("media")
	}
	cp := *m
	return &cp, nil
}

func (r *MemMediaRepo) FindByFilename(_ context.Context, filename string) (*model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.Medias {
		if m.Filename == filename {
			cp := *m
			return &cp, nil
		}
	}
	return nil, notFound("media")
}

func (r *MemMediaRepo) FindByUploader(_ context.Context, userId primitive.ObjectID) ([]model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Media
	for _, m := range r.Medias {
		if m.UploadedBy == userId {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *MemMediaRepo) FindByRelation(_ context.Context, relatedTo primitive.ObjectID, onModel model.RelatedModel) ([]model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Media
	for _, m := range r.Medias {
		if m.RelatedTo == relatedTo && m.OnModel == onModel {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *MemMediaRepo) Create(_ context.Context, media *model.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	media.Id = primitive.NewObjectID()
	cp := *media
	r.Medias[media.Id] = &cp
	return nil
}

func (r *MemMediaRepo) Update(_ context.Context, media *model.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Medias[media.Id]; !ok {
		return notFound("media")
	}
	cp := *media
	r.Medias[media.Id] = &cp
	return nil
}

func (r *MemMediaRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Medias[id]; !ok {
		return notFound("media")
	}
	delete(r.Medias, id)
	return nil
}

// ==================== 通知 ====================

// MemNotificationRepo 通知 Repository 的内存实现
type MemNotificationRepo struct {
	mu            sync.Mutex
	Notifications map[primitive.ObjectID]*model.Notification
}

// NewMemNotificationRepo 创建空的通知存储
func NewMemNotificationRepo() *MemNotificationRepo {
	return &MemNotificationRepo{Notifications: make(map[primitive.ObjectID]*model.Notification)}
}

// Put 直接放入一条通知（测试预置数据用）
func (r *MemNotificationRepo) Put(n *model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.Id.IsZero() {
		n.Id = primitive.NewObjectID()
	}
	r.Notifications[n.Id] = n
}

func (r *MemNotificationRepo) FindById(_ context.Context, id primitive.ObjectID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.Notifications[id]
	if !ok {
		return nil, notFound("notification")
	}
	cp := *n
	return &cp, nil
}

func (r *MemNotificationRepo) FindByRecipient(_ context.Context, userId primitive.ObjectID) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.Notifications {
		if n.Recipient == userId {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *MemNotificationRepo) CountUnread(_ context.Context, userId primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.Notifications {
		if n.Recipient == userId && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *MemNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.Id = primitive.NewObjectID()
	cp := *notification
	r.Notifications[notification.Id] = &cp
	return nil
}

func (r *MemNotificationRepo) MarkRead(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.Notifications[id]
	if !ok {
		return notFound("notification")
	}
	n.IsRead = true
	return nil
}

func (r *MemNotificationRepo) MarkAllRead(_ context.Context, userId primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, n := range r.Notifications {
		if n.Recipient == userId && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (r *MemNotificationRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Notifications[id]; !ok {
		return notFound("notification")
	}
	delete(r.Notifications, id)
	return nil
}

// ==================== 缓存 ====================

// MemCache AsyncCacheService 的内存实现
// SubmitTask 同步执行，测试无需等待后台协程
type MemCache struct {
	mu     sync.Mutex
	Values map[string]string
}

// NewMemCache 创建空缓存
func NewMemCache() *MemCache {
	return &MemCache{Values: make(map[string]string)}
}

func (c *MemCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Values[key] = value
	return nil
}

func (c *MemCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Values[key], nil
}

func (c *MemCache) GetOrError(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.Values[key]
	if !ok {
		return "", notFound("key")
	}
	return v, nil
}

func (c *MemCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Values, key)
	return nil
}

func (c *MemCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.Values {
		if strings.HasPrefix(k, prefix) {
			delete(c.Values, k)
		}
	}
	return nil
}

func (c *MemCache) DeleteByPatterns(ctx context.Context, patterns []string) error {
	for _, p := range patterns {
		if err := c.DeleteByPattern(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (c *MemCache) SubmitTask(action func()) {
	action()
}

// ==================== 通知队列 ====================

// MemQueue NotificationQueue 的内存实现，记录所有发布的事件
type MemQueue struct {
	mu     sync.Mutex
	Events []*mq.NotificationEvent
}

// NewMemQueue 创建空队列
func NewMemQueue() *MemQueue {
	return &MemQueue{}
}

func (q *MemQueue) Publish(_ context.Context, event *mq.NotificationEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Events = append(q.Events, event)
	return nil
}

func (q *MemQueue) Consume(_ context.Context, _ func(ctx context.Context, event *mq.NotificationEvent) error) {
}

func (q *MemQueue) Close() error { return nil }

// EventsFor 返回发给指定接收者的事件
func (q *MemQueue) EventsFor(recipient primitive.ObjectID) []*mq.NotificationEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*mq.NotificationEvent
	for _, e := range q.Events {
		if e.Recipient == recipient {
			out = append(out, e)
		}
	}
	return out
}
