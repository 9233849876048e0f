// Package jwt 签发和校验会话令牌
// 双令牌方案：短期访问令牌用于接口认证，长期刷新令牌用于轮换
// 刷新令牌携带一次性 TokenId，与 Redis 中登记的值比对实现单会话互踢
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// issuer 只接受本服务签发的令牌
const issuer = "mingle_chat_server"

// 令牌种类
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims 会话令牌声明
// Kind 区分访问令牌与刷新令牌；TokenId 仅刷新令牌携带
type Claims struct {
	UserId  string `json:"uid"`
	Kind    string `json:"kind"`
	TokenId string `json:"tid,omitempty"`
	jwt.RegisteredClaims
}

// signer 签发配置，由 Init 初始化
var signer struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// Init 初始化签发配置
func Init(secret string, accessExpiryMinutes, refreshExpiryHours int) {
	signer.secret = []byte(secret)
	signer.accessExpiry = time.Duration(accessExpiryMinutes) * time.Minute
	signer.refreshExpiry = time.Duration(refreshExpiryHours) * time.Hour
}

// newClaims 组装一份指定种类和有效期的声明
func newClaims(userId, kind string, expiry time.Duration) Claims {
	now := time.Now()
	return Claims{
		UserId: userId,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userId,
		},
	}
}

func sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signer.secret)
}

// GenerateAccessToken 签发访问令牌
func GenerateAccessToken(userId string) (string, error) {
	return sign(newClaims(userId, KindAccess, signer.accessExpiry))
}

// GenerateRefreshToken 签发刷新令牌
// 返回令牌和随机 TokenId，后者由调用方写入 Redis 用于互踢比对
func GenerateRefreshToken(userId string) (tokenString string, tokenId string, err error) {
	tokenId = uuid.NewString()
	claims := newClaims(userId, KindRefresh, signer.refreshExpiry)
	claims.TokenId = tokenId
	tokenString, err = sign(claims)
	return
}

// ParseToken 解析并校验令牌
// 只接受 HS256 签名且 issuer 为本服务的令牌
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(*jwt.Token) (interface{}, error) { return signer.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
