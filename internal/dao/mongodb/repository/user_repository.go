package repository

import (
	"context"

	"mingle_chat_server/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userRepository 用户 Repository 的 MongoDB 实现
type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository 创建用户 Repository 实例
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection("users")}
}

// FindById 根据 ObjectID 查找用户
func (r *userRepository) FindById(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, wrapDBErrorf(err, "find user %s", id.Hex())
	}
	return &user, nil
}

// FindByIds 批量根据 ObjectID 查找用户
// 不存在的 id 被静默跳过，结果数可能小于输入数
func (r *userRepository) FindByIds(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, wrapDBError(err, "find users by ids")
	}
	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, wrapDBError(err, "decode users")
	}
	return users, nil
}

// FindByLogin 根据用户名或邮箱查找用户
func (r *userRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}}
	var user model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, wrapDBErrorf(err, "find user by login %q", login)
	}
	return &user, nil
}

// ExistsByUsernameOrEmail 检查用户名或邮箱是否已被占用
func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapDBError(err, "count users by username or email")
	}
	return count > 0, nil
}

// Search 按用户名/邮箱子串搜索用户
// 大小写不敏感的正则匹配，排除搜索者自身
func (r *userRepository) Search(ctx context.Context, query string, exclude primitive.ObjectID) ([]model.User, error) {
	pattern := primitive.Regex{Pattern: regexQuoteMeta(query), Options: "i"}
	filter := bson.M{
		"_id": bson.M{"$ne": exclude},
		"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
		},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, wrapDBError(err, "search users")
	}
	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, wrapDBError(err, "decode users")
	}
	return users, nil
}

// Create 创建新用户，回填生成的 ObjectID
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return wrapDBError(err, "insert user")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.Id = oid
	}
	return nil
}

// Update 整体更新用户文档
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.Id}, user)
	if err != nil {
		return wrapDBErrorf(err, "update user %s", user.Id.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "update user %s", user.Id.Hex())
	}
	return nil
}

// AddContact 向联系人集合追加引用，已存在时不重复
func (r *userRepository) AddContact(ctx context.Context, userId, contactId primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userId},
		bson.M{"$addToSet": bson.M{"contacts": contactId}})
	if err != nil {
		return wrapDBErrorf(err, "add contact to user %s", userId.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "add contact to user %s", userId.Hex())
	}
	return nil
}

// RemoveContact 从联系人集合移除引用
func (r *userRepository) RemoveContact(ctx context.Context, userId, contactId primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userId},
		bson.M{"$pull": bson.M{"contacts": contactId}})
	if err != nil {
		return wrapDBErrorf(err, "remove contact from user %s", userId.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "remove contact from user %s", userId.Hex())
	}
	return nil
}

// AddChatRef 向用户的聊天集合追加引用，已存在时不重复
func (r *userRepository) AddChatRef(ctx context.Context, userId, chatId primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userId},
		bson.M{"$addToSet": bson.M{"chats": chatId}})
	if err != nil {
		return wrapDBErrorf(err, "add chat ref to user %s", userId.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "add chat ref to user %s", userId.Hex())
	}
	return nil
}

// RemoveChatRef 从用户的聊天集合移除引用
func (r *userRepository) RemoveChatRef(ctx context.Context, userId, chatId primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userId},
		bson.M{"$pull": bson.M{"chats": chatId}})
	if err != nil {
		return wrapDBErrorf(err, "remove chat ref from user %s", userId.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "remove chat ref from user %s", userId.Hex())
	}
	return nil
}
