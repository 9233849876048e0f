// Package auth 提供认证相关的业务逻辑
// 处理登录、令牌签发与刷新、请求方身份校验
package auth

import (
	"context"
	"time"

	"mingle_chat_server/internal/dao/mongodb/repository"
	myredis "mingle_chat_server/internal/dao/redis"
	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/dto/respond"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/pkg/constants"
	"mingle_chat_server/pkg/errorx"
	"mingle_chat_server/pkg/util/jwt"

	"go.uber.org/zap"
)

// refreshTokenKey 刷新令牌在 Redis 中的键
// 值为当前有效的 tokenId，实现单会话互踢
func refreshTokenKey(userId string) string {
	return "refresh_token:" + userId
}

// Service 认证服务实现
type Service struct {
	userRepo repository.UserRepository
	cache    myredis.CacheService // 缓存服务（依赖倒置）
}

// NewAuthService 创建认证服务实例
func NewAuthService(userRepo repository.UserRepository, cache myredis.CacheService) *Service {
	return &Service{
		userRepo: userRepo,
		cache:    cache,
	}
}

// Login 密码登录
// 用户名或邮箱 + 密码，成功后签发双令牌并登记 tokenId
func (s *Service) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.userRepo.FindByLogin(ctx, req.Login)
	if err != nil {
		if errorx.IsNotFound(err) {
			// 不泄露账号是否存在
			return nil, errorx.New(errorx.CodeInvalidLogin, "用户名或密码错误")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidLogin, "用户名或密码错误")
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user.Id.Hex())
	if err != nil {
		return nil, err
	}

	zap.L().Info("user logged in", zap.String("user_id", user.Id.Hex()))
	return &respond.LoginRespond{
		Id:           user.Id.Hex(),
		Username:     user.Username,
		Email:        user.Email,
		ProfilePic:   user.ProfilePic,
		Status:       user.Status,
		CreatedAt:    user.CreatedAt.Format("2006-01-02 15:04:05"),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken 校验刷新令牌并轮换双令牌
// tokenId 必须与 Redis 中登记的一致，旧令牌随轮换作废
func (s *Service) RefreshToken(ctx context.Context, req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error) {
	claims, err := jwt.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "刷新令牌无效")
	}
	if claims.Kind != jwt.KindRefresh || claims.TokenId == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "刷新令牌无效")
	}

	validTokenId, err := s.cache.Get(ctx, refreshTokenKey(claims.UserId))
	if err != nil {
		return nil, err
	}
	if validTokenId == "" || validTokenId != claims.TokenId {
		return nil, errorx.New(errorx.CodeUnauthorized, "刷新令牌已失效")
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, claims.UserId)
	if err != nil {
		return nil, err
	}
	return &respond.RefreshTokenRespond{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Authenticate 校验请求方 id 对应的用户存在
// 作为路由中间件的认证入口，返回该用户供后续使用
func (s *Service) Authenticate(ctx context.Context, userId string) (*model.User, error) {
	oid, err := repository.ParseObjectID(userId)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeUnauthorized, "非法的用户标识 %s", userId)
	}
	user, err := s.userRepo.FindById(ctx, oid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeUnauthorized, "用户 %s 不存在", userId)
		}
		return nil, err
	}
	return user, nil
}

// Logout 吊销用户的刷新令牌
func (s *Service) Logout(ctx context.Context, userId string) error {
	return s.cache.Delete(ctx, refreshTokenKey(userId))
}

// issueTokens 签发双令牌并将 tokenId 写入 Redis
func (s *Service) issueTokens(ctx context.Context, userId string) (accessToken, refreshToken string, err error) {
	accessToken, err = jwt.GenerateAccessToken(userId)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "生成 access token 失败")
	}
	var tokenId string
	refreshToken, tokenId, err = jwt.GenerateRefreshToken(userId)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "生成 refresh token 失败")
	}

	ttl := time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
	if err = s.cache.Set(ctx, refreshTokenKey(userId), tokenId, ttl); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
