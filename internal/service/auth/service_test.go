package auth

import (
	"context"
	"testing"

	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/internal/testutil"
	"mingle_chat_server/pkg/errorx"
	"mingle_chat_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newFixture(t *testing.T) (*Service, *testutil.MemUserRepo, *testutil.MemCache) {
	t.Helper()
	jwt.Init("test-secret", 30, 168)
	repo := testutil.NewMemUserRepo()
	cache := testutil.NewMemCache()
	return NewAuthService(repo, cache), repo, cache
}

func addUser(t *testing.T, repo *testutil.MemUserRepo, username, email, password string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: email}
	require.NoError(t, u.SetPassword(password))
	repo.Put(u)
	return u
}

func TestLogin(t *testing.T) {
	svc, repo, cache := newFixture(t)
	alice := addUser(t, repo, "alice", "alice@test.com", "Secret1")

	// 用户名登录
	resp, err := svc.Login(context.Background(), request.LoginRequest{Login: "alice", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, alice.Id.Hex(), resp.Id)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// tokenId 登记到缓存
	assert.NotEmpty(t, cache.Values["refresh_token:"+alice.Id.Hex()])

	// 邮箱登录
	_, err = svc.Login(context.Background(), request.LoginRequest{Login: "alice@test.com", Password: "Secret1"})
	require.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, repo, _ := newFixture(t)
	addUser(t, repo, "alice", "alice@test.com", "Secret1")

	// 密码错误和账号不存在返回同一错误，不泄露账号信息
	_, err := svc.Login(context.Background(), request.LoginRequest{Login: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidLogin, errorx.GetCode(err))
	wrongPwdMsg := err.Error()

	_, err = svc.Login(context.Background(), request.LoginRequest{Login: "nobody", Password: "Secret1"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidLogin, errorx.GetCode(err))
	assert.Equal(t, wrongPwdMsg, err.Error())
}

func TestRefreshTokenRotates(t *testing.T) {
	svc, repo, cache := newFixture(t)
	alice := addUser(t, repo, "alice", "alice@test.com", "Secret1")

	login, err := svc.Login(context.Background(), request.LoginRequest{Login: "alice", Password: "Secret1"})
	require.NoError(t, err)
	oldTokenId := cache.Values["refresh_token:"+alice.Id.Hex()]

	resp, err := svc.RefreshToken(context.Background(), request.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// 轮换后旧 tokenId 作废，旧刷新令牌不再可用
	assert.NotEqual(t, oldTokenId, cache.Values["refresh_token:"+alice.Id.Hex()])
	_, err = svc.RefreshToken(context.Background(), request.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc, repo, _ := newFixture(t)
	addUser(t, repo, "alice", "alice@test.com", "Secret1")

	login, err := svc.Login(context.Background(), request.LoginRequest{Login: "alice", Password: "Secret1"})
	require.NoError(t, err)

	// access token 不携带 tokenId，不能用于刷新
	_, err = svc.RefreshToken(context.Background(), request.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	// 随便一串也不行
	_, err = svc.RefreshToken(context.Background(), request.RefreshTokenRequest{RefreshToken: "garbage"})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, repo, cache := newFixture(t)
	alice := addUser(t, repo, "alice", "alice@test.com", "Secret1")

	login, err := svc.Login(context.Background(), request.LoginRequest{Login: "alice", Password: "Secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), alice.Id.Hex()))
	assert.Empty(t, cache.Values["refresh_token:"+alice.Id.Hex()])

	_, err = svc.RefreshToken(context.Background(), request.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestAuthenticate(t *testing.T) {
	svc, repo, _ := newFixture(t)
	alice := addUser(t, repo, "alice", "alice@test.com", "Secret1")

	user, err := svc.Authenticate(context.Background(), alice.Id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// 不存在的用户和非法 id 都按未授权处理
	_, err = svc.Authenticate(context.Background(), primitive.NewObjectID().Hex())
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
	_, err = svc.Authenticate(context.Background(), "bad-id")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}
