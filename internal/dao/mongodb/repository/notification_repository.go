package repository

import (
	"context"

	"mingle_chat_server/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// notificationRepository 通知 Repository 的 MongoDB 实现
type notificationRepository struct {
	coll *mongo.Collection
}

// NewNotificationRepository 创建通知 Repository 实例
func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{coll: db.Collection("notifications")}
}

// FindById 根据 ObjectID 查找通知
func (r *notificationRepository) FindById(ctx context.Context, id primitive.ObjectID) (*model.Notification, error) {
	var notification model.Notification
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&notification); err != nil {
		return nil, wrapDBErrorf(err, "find notification %s", id.Hex())
	}
	return &notification, nil
}

// FindByRecipient 查找用户的全部通知，按创建时间降序
func (r *notificationRepository) FindByRecipient(ctx context.Context, userId primitive.ObjectID) ([]model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"recipient": userId}, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "find notifications of user %s", userId.Hex())
	}
	var notifications []model.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, wrapDBError(err, "decode notifications")
	}
	return notifications, nil
}

// CountUnread 统计用户未读通知数
func (r *notificationRepository) CountUnread(ctx context.Context, userId primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"recipient": userId,
		"is_read":   false,
	})
	if err != nil {
		return 0, wrapDBErrorf(err, "count unread notifications of user %s", userId.Hex())
	}
	return count, nil
}

// Create 创建通知，回填生成的 ObjectID
func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	res, err := r.coll.InsertOne(ctx, notification)
	if err != nil {
		return wrapDBError(err, "insert notification")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		notification.Id = oid
	}
	return nil
}

// MarkRead 将单条通知置为已读，幂等
func (r *notificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return wrapDBErrorf(err, "mark notification %s read", id.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "mark notification %s read", id.Hex())
	}
	return nil
}

// MarkAllRead 将用户全部未读通知置为已读，返回更新条数
func (r *notificationRepository) MarkAllRead(ctx context.Context, userId primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"recipient": userId, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, wrapDBErrorf(err, "mark all notifications of user %s read", userId.Hex())
	}
	return res.ModifiedCount, nil
}

// Delete 物理删除通知
func (r *notificationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapDBErrorf(err, "delete notification %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "delete notification %s", id.Hex())
	}
	return nil
}
