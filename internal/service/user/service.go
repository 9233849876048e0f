// Package user 提供用户相关的业务逻辑
// 处理注册、资料管理、搜索和联系人关系
package user

import (
	"context"
	"strings"
	"time"
	"unicode"

	"mingle_chat_server/internal/dao/mongodb/repository"
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/dto/respond"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/pkg/constants"
	"mingle_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service 用户服务实现
type Service struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务实例
func NewUserService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// validatePassword 校验密码策略
// 至少 6 位，不含空白字符，至少一个大写字母和一个数字
func validatePassword(password string) error {
	if len(password) < constants.PASSWORD_MIN_LEN {
		return errorx.Newf(errorx.CodeValidation, "密码长度不能少于 %d 位", constants.PASSWORD_MIN_LEN)
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return errorx.New(errorx.CodeValidation, "密码不能包含空白字符")
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return errorx.New(errorx.CodeValidation, "密码必须包含至少一个大写字母和一个数字")
	}
	return nil
}

// toUserInfo 将用户模型转换为响应
func toUserInfo(u *model.User) *respond.UserInfoRespond {
	return &respond.UserInfoRespond{
		Id:         u.Id.Hex(),
		Username:   u.Username,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Register 用户注册
// 用户名和邮箱唯一，密码符合策略后 bcrypt 加密存储
func (s *Service) Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error) {
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errorx.New(errorx.CodeUserExist, "用户名或邮箱已被占用")
	}

	user := &model.User{
		Username:   req.Username,
		Email:      strings.ToLower(req.Email),
		ProfilePic: req.ProfilePic,
		Contacts:   []primitive.ObjectID{},
		Chats:      []primitive.ObjectID{},
		CreatedAt:  time.Now(),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "密码加密失败")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	zap.L().Info("user registered", zap.String("user_id", user.Id.Hex()), zap.String("username", user.Username))
	return &respond.RegisterRespond{
		Id:         user.Id.Hex(),
		Username:   user.Username,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
		Status:     user.Status,
		CreatedAt:  user.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// GetUser 获取单个用户信息
func (s *Service) GetUser(ctx context.Context, userId string) (*respond.UserInfoRespond, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindById(ctx, oid)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// UpdateUser 更新用户资料，未提供的字段保持原值
// 修改用户名或邮箱时重新检查唯一性
func (s *Service) UpdateUser(ctx context.Context, userId string, req request.UpdateUserRequest) (*respond.UserInfoRespond, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindById(ctx, oid)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != "" && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, *req.Username, "")
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errorx.New(errorx.CodeUserExist, "用户名已被占用")
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != "" && !strings.EqualFold(*req.Email, user.Email) {
		email := strings.ToLower(*req.Email)
		exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, "", email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errorx.New(errorx.CodeUserExist, "邮箱已被占用")
		}
		user.Email = email
	}
	if req.ProfilePic != nil {
		user.ProfilePic = *req.ProfilePic
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// SearchUsers 按用户名/邮箱子串搜索用户，排除搜索者自身
func (s *Service) SearchUsers(ctx context.Context, userId, query string) ([]respond.UserInfoRespond, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "搜索关键词不能为空")
	}
	users, err := s.userRepo.Search(ctx, query, oid)
	if err != nil {
		return nil, err
	}
	result := make([]respond.UserInfoRespond, 0, len(users))
	for i := range users {
		result = append(result, *toUserInfo(&users[i]))
	}
	return result, nil
}

// GetContacts 获取联系人列表
func (s *Service) GetContacts(ctx context.Context, userId string) ([]respond.UserInfoRespond, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindById(ctx, oid)
	if err != nil {
		return nil, err
	}
	contacts, err := s.userRepo.FindByIds(ctx, user.Contacts)
	if err != nil {
		return nil, err
	}
	result := make([]respond.UserInfoRespond, 0, len(contacts))
	for i := range contacts {
		result = append(result, *toUserInfo(&contacts[i]))
	}
	return result, nil
}

// AddContact 添加联系人（单向关系）
// 不允许添加自己，重复添加返回冲突
func (s *Service) AddContact(ctx context.Context, userId, contactId string) error {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return err
	}
	contactOid, err := repository.ParseObjectID(contactId)
	if err != nil {
		return err
	}
	if oid == contactOid {
		return errorx.New(errorx.CodeConflict, "不能添加自己为联系人")
	}

	user, err := s.userRepo.FindById(ctx, oid)
	if err != nil {
		return err
	}
	if user.HasContact(contactOid) {
		return errorx.New(errorx.CodeConflict, "该用户已在联系人列表中")
	}
	// 确认联系人存在
	if _, err := s.userRepo.FindById(ctx, contactOid); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.Newf(errorx.CodeUserNotExist, "用户 %s 不存在", contactId)
		}
		return err
	}
	return s.userRepo.AddContact(ctx, oid, contactOid)
}

// RemoveContact 移除联系人
func (s *Service) RemoveContact(ctx context.Context, userId, contactId string) error {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return err
	}
	contactOid, err := repository.ParseObjectID(contactId)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindById(ctx, oid)
	if err != nil {
		return err
	}
	if !user.HasContact(contactOid) {
		return errorx.Newf(errorx.CodeNotFound, "用户 %s 不在联系人列表中", contactId)
	}
	return s.userRepo.RemoveContact(ctx, oid, contactOid)
}
