// Package mongodb 初始化 MongoDB 连接并创建索引
package mongodb

import (
	"context"
	"time"

	"mingle_chat_server/internal/config"
	"mingle_chat_server/internal/dao/mongodb/repository"
	"mingle_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var client *mongo.Client

// Init 建立 MongoDB 连接，确保索引存在，返回 Repository 聚合
func Init() (*repository.Repositories, error) {
	conf := config.GetConfig().MongoConfig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(conf.Uri))
	if err != nil {
		zap.L().Error("connect to mongodb failed", zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodeDBError, "connect to mongodb")
	}
	if err = client.Ping(ctx, nil); err != nil {
		zap.L().Error("ping mongodb failed", zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodeDBError, "ping mongodb")
	}

	db := client.Database(conf.DatabaseName)
	if err = ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	zap.L().Info("mongodb connected", zap.String("database", conf.DatabaseName))
	return repository.NewRepositories(db), nil
}

// Close 断开 MongoDB 连接，进程退出时调用
func Close() {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		zap.L().Error("disconnect mongodb failed", zap.Error(err))
	}
}

// ensureIndexes 创建各集合的索引，重复创建是幂等的
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"chats": {
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		"media": {
			{Keys: bson.D{{Key: "filename", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "uploaded_by", Value: 1}}},
			{Keys: bson.D{{Key: "related_to", Value: 1}, {Key: "on_model", Value: 1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			zap.L().Error("create indexes failed", zap.String("collection", coll), zap.Error(err))
			return errorx.Wrapf(err, errorx.CodeDBError, "create indexes for %s", coll)
		}
	}
	return nil
}
