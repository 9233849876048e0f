package repository

import (
	"context"

	"mingle_chat_server/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// chatRepository 聊天 Repository 的 MongoDB 实现
type chatRepository struct {
	coll *mongo.Collection
}

// NewChatRepository 创建聊天 Repository 实例
func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepository{coll: db.Collection("chats")}
}

// FindById 根据 ObjectID 查找聊天
func (r *chatRepository) FindById(ctx context.Context, id primitive.ObjectID) (*model.Chat, error) {
	var chat model.Chat
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat); err != nil {
		return nil, wrapDBErrorf(err, "find chat %s", id.Hex())
	}
	return &chat, nil
}

// FindByMember 查找成员集合包含指定用户的所有聊天，按创建时间降序
func (r *chatRepository) FindByMember(ctx context.Context, userId primitive.ObjectID) ([]model.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"members": userId}, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "find chats of member %s", userId.Hex())
	}
	var chats []model.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, wrapDBError(err, "decode chats")
	}
	return chats, nil
}

// Create 创建新聊天，回填生成的 ObjectID
func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	res, err := r.coll.InsertOne(ctx, chat)
	if err != nil {
		return wrapDBError(err, "insert chat")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		chat.Id = oid
	}
	return nil
}

// Update 整体更新聊天文档
func (r *chatRepository) Update(ctx context.Context, chat *model.Chat) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": chat.Id}, chat)
	if err != nil {
		return wrapDBErrorf(err, "update chat %s", chat.Id.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "update chat %s", chat.Id.Hex())
	}
	return nil
}

// AppendMessage 向消息列表追加消息引用
func (r *chatRepository) AppendMessage(ctx context.Context, chatId, messageId primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": chatId},
		bson.M{"$push": bson.M{"messages": messageId}})
	if err != nil {
		return wrapDBErrorf(err, "append message to chat %s", chatId.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "append message to chat %s", chatId.Hex())
	}
	return nil
}

// Delete 物理删除聊天文档
func (r *chatRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapDBErrorf(err, "delete chat %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "delete chat %s", id.Hex())
	}
	return nil
}
