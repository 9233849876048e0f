package repository

import (
	"context"

	"mingle_chat_server/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mediaRepository 媒体 Repository 的 MongoDB 实现
type mediaRepository struct {
	coll *mongo.Collection
}

// NewMediaRepository 创建媒体 Repository 实例
func NewMediaRepository(db *mongo.Database) MediaRepository {
	return &mediaRepository{coll: db.Collection("media")}
}

// FindById 根据 ObjectID 查找媒体
func (r *mediaRepository) FindById(ctx context.Context, id primitive.ObjectID) (*model.Media, error) {
	var media model.Media
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&media); err != nil {
		return nil, wrapDBErrorf(err, "find media %s", id.Hex())
	}
	return &media, nil
}

// FindByFilename 根据系统文件名查找媒体
func (r *mediaRepository) FindByFilename(ctx context.Context, filename string) (*model.Media, error) {
	var media model.Media
	if err := r.coll.FindOne(ctx, bson.M{"filename": filename}).Decode(&media); err != nil {
		return nil, wrapDBErrorf(err, "find media by filename %q", filename)
	}
	return &media, nil
}

// FindByUploader 查找用户上传的全部媒体，按创建时间降序
func (r *mediaRepository) FindByUploader(ctx context.Context, userId primitive.ObjectID) ([]model.Media, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"uploaded_by": userId}, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "find media of uploader %s", userId.Hex())
	}
	var medias []model.Media
	if err := cursor.All(ctx, &medias); err != nil {
		return nil, wrapDBError(err, "decode media")
	}
	return medias, nil
}

// FindByRelation 按多态引用查找媒体，按创建时间降序
func (r *mediaRepository) FindByRelation(ctx context.Context, relatedTo primitive.ObjectID, onModel model.RelatedModel) ([]model.Media, error) {
	filter := bson.M{
		"related_to": relatedTo,
		"on_model":   onModel,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "find media related to %s", relatedTo.Hex())
	}
	var medias []model.Media
	if err := cursor.All(ctx, &medias); err != nil {
		return nil, wrapDBError(err, "decode media")
	}
	return medias, nil
}

// Create 创建媒体元数据，回填生成的 ObjectID
func (r *mediaRepository) Create(ctx context.Context, media *model.Media) error {
	res, err := r.coll.InsertOne(ctx, media)
	if err != nil {
		return wrapDBError(err, "insert media")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		media.Id = oid
	}
	return nil
}

// Update 整体更新媒体元数据
func (r *mediaRepository) Update(ctx context.Context, media *model.Media) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": media.Id}, media)
	if err != nil {
		return wrapDBErrorf(err, "update media %s", media.Id.Hex())
	}
	if res.MatchedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "update media %s", media.Id.Hex())
	}
	return nil
}

// Delete 物理删除媒体元数据
func (r *mediaRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapDBErrorf(err, "delete media %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return wrapDBErrorf(mongo.ErrNoDocuments, "delete media %s", id.Hex())
	}
	return nil
}
