package repository

import (
	"context"

	"mingle_chat_server/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// messageRepository 消息 Repository 的 MongoDB 实现
type messageRepository struct {
	coll *mongo.Collection
}

// NewMessageRepository 创建消息 Repository 实例
func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{coll: db.Collection("messages")}
}

// FindById 根据 ObjectID 查找消息
// 软删除的消息也会返回，由调用方决定如何处理
func (r *messageRepository) FindById(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	var message model.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&message); err != nil {
		return nil, wrapDBErrorf(err, "find message %s", id.Hex())
	}
	return &message, nil
}

// FindByChat 查找聊天内全部未删除消息，按创建时间升序
func (r *messageRepository) FindByChat(ctx context.Context, chatId primitive.ObjectID) ([]model.Message, error) {
	filter := bson.M{
		"chat_id": chatId,
		"state":   model.MessageActive,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "find messages of chat %s", chatId.Hex())
	}
	var messages []model.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, wrapDBError(err, "decode messages")
	}
	return messages, nil
}

// FindUnread 查找聊天内指定用户未读的未删除消息，按创建时间升序
func (r *messageRepository) FindUnread(ctx context.Context, chatId, userId primitive.ObjectID) ([]model.Message, error) {
	filter := bson.M{
		"chat_id": chatId,
		"state":   model.MessageActive,
		"seen_by": bson.M{"$ne": userId},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "find unread messages of chat %s", chatId.Hex())
	}
	var messages []model.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, wrapDBError(err, "decode messages")
	}
	return messages, nil
}

// Create 创建新消息，回填生成的 ObjectID
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	res, err := r.coll.InsertOne(ctx, message)
	if err != nil {
		return wrapDBError(err, "insert message")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		message.Id = oid
	}
	return nil
}

// Update 整体更新消息文档
func (r *messageRepository) Update(ctx context.Context, message *model.Message) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": message.Id}, message)
	if err != nil {
		return wrapDBErrorf(err, "update message %s", message.Id.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "update message %s", message.Id.Hex())
	}
	return nil
}

// AddSeenBy 向已读集合追加用户引用，已存在时不重复
func (r *messageRepository) AddSeenBy(ctx context.Context, messageId, userId primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": messageId},
		bson.M{"$addToSet": bson.M{"seen_by": userId}})
	if err != nil {
		return wrapDBErrorf(err, "add seen_by to message %s", messageId.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "add seen_by to message %s", messageId.Hex())
	}
	return nil
}
