// Package media 提供媒体文件相关的业务逻辑
// 字节内容由 filestore 落盘，元数据走 MediaRepository
// 可见性规则：公开媒体所有人可见，私有媒体仅上传者可见
package media

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"time"

	"mingle_chat_server/internal/dao/mongodb/repository"
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/infrastructure/filestore"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/pkg/constants"
	"mingle_chat_server/pkg/errorx"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service 媒体服务实现
type Service struct {
	mediaRepo repository.MediaRepository
	store     *filestore.Store
}

// NewMediaService 创建媒体服务实例
func NewMediaService(mediaRepo repository.MediaRepository, store *filestore.Store) *Service {
	return &Service{
		mediaRepo: mediaRepo,
		store:     store,
	}
}

// StreamURL 构造媒体的访问地址
func StreamURL(filename string) string {
	return "/api/media/stream/" + filename
}

// StoreFile 落盘并登记媒体元数据
// 供上传接口和消息附件共用，filename 为 uuid + 原扩展名
func (s *Service) StoreFile(ctx context.Context, uploaderId primitive.ObjectID, file *multipart.FileHeader, relation model.Relation, isPublic bool) (*model.Media, error) {
	if file.Size > constants.FILE_MAX_SIZE {
		return nil, errorx.Newf(errorx.CodeValidation, "文件大小超过限制 %d 字节", constants.FILE_MAX_SIZE)
	}

	src, err := file.Open()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "读取上传文件失败")
	}
	defer src.Close()

	filename := uuid.NewString() + filepath.Ext(file.Filename)
	path, err := s.store.Save(filename, src)
	if err != nil {
		return nil, err
	}

	media := &model.Media{
		Filename:     filename,
		OriginalName: file.Filename,
		Mimetype:     file.Header.Get("Content-Type"),
		Size:         file.Size,
		Path:         path,
		Url:          StreamURL(filename),
		UploadedBy:   uploaderId,
		Relation:     relation,
		IsPublic:     isPublic,
		CreatedAt:    time.Now(),
	}
	if err := s.mediaRepo.Create(ctx, media); err != nil {
		// 元数据写入失败时清理已落盘的文件
		if rmErr := s.store.Remove(filename); rmErr != nil {
			zap.L().Error("cleanup orphan file failed", zap.String("filename", filename), zap.Error(rmErr))
		}
		return nil, err
	}
	return media, nil
}

// UploadMedia 上传文件并登记元数据
// 默认私有，表单显式传 is_public=true 时公开
func (s *Service) UploadMedia(ctx context.Context, userId string, file *multipart.FileHeader, req request.UploadMediaRequest) (*model.Media, error) {
	uploaderOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}

	relation, err := parseRelation(req.RelatedTo, req.OnModel)
	if err != nil {
		return nil, err
	}

	isPublic := false
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	return s.StoreFile(ctx, uploaderOid, file, relation, isPublic)
}

// GetMedia 获取单个媒体元数据，受可见性约束
func (s *Service) GetMedia(ctx context.Context, userId, mediaId string) (*model.Media, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	mediaOid, err := repository.ParseObjectID(mediaId)
	if err != nil {
		return nil, err
	}
	media, err := s.mediaRepo.FindById(ctx, mediaOid)
	if err != nil {
		return nil, err
	}
	if !media.VisibleTo(userOid) {
		return nil, errorx.New(errorx.CodeForbidden, "无权查看该媒体")
	}
	return media, nil
}

// GetOwnMedia 获取用户自己上传的全部媒体
func (s *Service) GetOwnMedia(ctx context.Context, userId string) ([]model.Media, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	return s.mediaRepo.FindByUploader(ctx, userOid)
}

// GetMediaByRelation 按多态引用查询媒体，过滤掉不可见项
func (s *Service) GetMediaByRelation(ctx context.Context, userId, relatedTo, onModel string) ([]model.Media, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	relatedOid, err := repository.ParseObjectID(relatedTo)
	if err != nil {
		return nil, err
	}
	m, err := model.ParseRelatedModel(onModel)
	if err != nil {
		return nil, err
	}

	medias, err := s.mediaRepo.FindByRelation(ctx, relatedOid, m)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Media, 0, len(medias))
	for i := range medias {
		if medias[i].VisibleTo(userOid) {
			visible = append(visible, medias[i])
		}
	}
	return visible, nil
}

// UpdateMedia 更新可见性或引用，仅上传者可操作
func (s *Service) UpdateMedia(ctx context.Context, userId, mediaId string, req request.UpdateMediaRequest) (*model.Media, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	mediaOid, err := repository.ParseObjectID(mediaId)
	if err != nil {
		return nil, err
	}
	media, err := s.mediaRepo.FindById(ctx, mediaOid)
	if err != nil {
		return nil, err
	}
	if media.UploadedBy != userOid {
		return nil, errorx.New(errorx.CodeForbidden, "仅上传者可修改该媒体")
	}

	if req.IsPublic != nil {
		media.IsPublic = *req.IsPublic
	}
	if req.RelatedTo != "" || req.OnModel != "" {
		relation, err := parseRelation(req.RelatedTo, req.OnModel)
		if err != nil {
			return nil, err
		}
		media.Relation = relation
	}
	if err := s.mediaRepo.Update(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// LinkToMessage 将已上传的媒体挂接到消息，仅上传者可操作
// 引用被改写为该消息，原有引用被覆盖
func (s *Service) LinkToMessage(ctx context.Context, userId, mediaId, messageId string) (*model.Media, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	mediaOid, err := repository.ParseObjectID(mediaId)
	if err != nil {
		return nil, err
	}
	messageOid, err := repository.ParseObjectID(messageId)
	if err != nil {
		return nil, err
	}
	media, err := s.mediaRepo.FindById(ctx, mediaOid)
	if err != nil {
		return nil, err
	}
	if media.UploadedBy != userOid {
		return nil, errorx.New(errorx.CodeForbidden, "仅上传者可挂接该媒体")
	}

	media.Relation = model.Relation{RelatedTo: messageOid, OnModel: model.RelatedMessage}
	if err := s.mediaRepo.Update(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// DeleteMedia 删除媒体元数据及物理文件，仅上传者可操作
func (s *Service) DeleteMedia(ctx context.Context, userId, mediaId string) error {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return err
	}
	mediaOid, err := repository.ParseObjectID(mediaId)
	if err != nil {
		return err
	}
	media, err := s.mediaRepo.FindById(ctx, mediaOid)
	if err != nil {
		return err
	}
	if media.UploadedBy != userOid {
		return errorx.New(errorx.CodeForbidden, "仅上传者可删除该媒体")
	}

	if err := s.mediaRepo.Delete(ctx, mediaOid); err != nil {
		return err
	}
	// 元数据删除成功后清理物理文件，失败只记录
	if err := s.store.Remove(media.Filename); err != nil {
		zap.L().Error("remove media file failed", zap.String("filename", media.Filename), zap.Error(err))
	}
	return nil
}

// DownloadFile 按媒体 id 解析物理路径，受可见性约束
// 供附件下载接口使用，调用方以原始文件名回写
func (s *Service) DownloadFile(ctx context.Context, userId, mediaId string) (string, *model.Media, error) {
	media, err := s.GetMedia(ctx, userId, mediaId)
	if err != nil {
		return "", nil, err
	}
	return s.store.Path(media.Filename), media, nil
}

// CleanupByFilename 按文件名清理媒体记录和物理文件
// 尽力而为：记录不存在视为已清理，其余失败只记录不上抛
func (s *Service) CleanupByFilename(ctx context.Context, filename string) {
	media, err := s.mediaRepo.FindByFilename(ctx, filename)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Warn("lookup media for cleanup failed", zap.String("filename", filename), zap.Error(err))
		}
		return
	}
	if err := s.mediaRepo.Delete(ctx, media.Id); err != nil {
		zap.L().Warn("delete media record failed", zap.String("filename", filename), zap.Error(err))
		return
	}
	if err := s.store.Remove(media.Filename); err != nil {
		zap.L().Warn("remove media file failed", zap.String("filename", filename), zap.Error(err))
	}
}

// ResolveFile 按文件名解析物理路径，受可见性约束
// 供流式下载接口使用
func (s *Service) ResolveFile(ctx context.Context, userId, filename string) (string, *model.Media, error) {
	userOid, err := repository.ParseObjectID(userId)
	if err != nil {
		return "", nil, err
	}
	media, err := s.mediaRepo.FindByFilename(ctx, filename)
	if err != nil {
		return "", nil, err
	}
	if !media.VisibleTo(userOid) {
		return "", nil, errorx.New(errorx.CodeForbidden, "无权访问该媒体")
	}
	return s.store.Path(media.Filename), media, nil
}

// parseRelation 解析可选的多态引用
// 两个字段要么都空，要么都有效
func parseRelation(relatedTo, onModel string) (model.Relation, error) {
	if relatedTo == "" && onModel == "" {
		return model.Relation{}, nil
	}
	if relatedTo == "" || onModel == "" {
		return model.Relation{}, errorx.New(errorx.CodeValidation, "related_to 和 on_model 必须同时提供")
	}
	oid, err := repository.ParseObjectID(relatedTo)
	if err != nil {
		return model.Relation{}, err
	}
	m, err := model.ParseRelatedModel(onModel)
	if err != nil {
		return model.Relation{}, err
	}
	return model.Relation{RelatedTo: oid, OnModel: m}, nil
}
