package user

import (
	"context"
	"testing"

	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/internal/testutil"
	"mingle_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newService() (*Service, *testutil.MemUserRepo) {
	repo := testutil.NewMemUserRepo()
	return NewUserService(repo), repo
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"合法密码", "Abc123", true},
		{"太短", "Ab1", false},
		{"缺少大写字母", "abc123", false},
		{"缺少数字", "Abcdef", false},
		{"包含空格", "Abc 123", false},
		{"包含制表符", "Abc\t123", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.password)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, errorx.CodeValidation, errorx.GetCode(err))
			}
		})
	}
}

func TestRegister(t *testing.T) {
	svc, repo := newService()

	resp, err := svc.Register(context.Background(), request.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Test.COM",
		Password: "Secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Id)
	// 邮箱统一小写存储
	assert.Equal(t, "alice@test.com", resp.Email)

	// 密码 bcrypt 存储且可校验
	oid, err := primitive.ObjectIDFromHex(resp.Id)
	require.NoError(t, err)
	u, err := repo.FindById(context.Background(), oid)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", u.Password)
	assert.True(t, u.CheckPassword("Secret1"))
	assert.False(t, u.CheckPassword("wrong"))

	// 用户名重复
	_, err = svc.Register(context.Background(), request.RegisterRequest{
		Username: "alice", Email: "other@test.com", Password: "Secret1",
	})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))

	// 邮箱重复
	_, err = svc.Register(context.Background(), request.RegisterRequest{
		Username: "bob", Email: "alice@test.com", Password: "Secret1",
	})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))

	// 密码策略不通过
	_, err = svc.Register(context.Background(), request.RegisterRequest{
		Username: "carol", Email: "carol@test.com", Password: "weak",
	})
	assert.Equal(t, errorx.CodeValidation, errorx.GetCode(err))
}

func TestUpdateUser(t *testing.T) {
	svc, repo := newService()
	alice := &model.User{Username: "alice", Email: "alice@test.com"}
	bob := &model.User{Username: "bob", Email: "bob@test.com"}
	repo.Put(alice)
	repo.Put(bob)

	// 未提供的字段保持原值
	resp, err := svc.UpdateUser(context.Background(), alice.Id.Hex(), request.UpdateUserRequest{Status: testutil.Ptr("忙碌")})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "忙碌", resp.Status)

	// 提供空字符串可将状态清空
	resp, err = svc.UpdateUser(context.Background(), alice.Id.Hex(), request.UpdateUserRequest{Status: testutil.Ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Status)
	assert.Equal(t, "alice", resp.Username)

	// 改用已占用的用户名
	_, err = svc.UpdateUser(context.Background(), alice.Id.Hex(), request.UpdateUserRequest{Username: testutil.Ptr("bob")})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))

	// 改用自己当前的邮箱（仅大小写不同）不视为冲突
	resp, err = svc.UpdateUser(context.Background(), alice.Id.Hex(), request.UpdateUserRequest{Email: testutil.Ptr("ALICE@test.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", resp.Email)
}

func TestSearchUsers(t *testing.T) {
	svc, repo := newService()
	alice := &model.User{Username: "alice", Email: "alice@test.com"}
	bob := &model.User{Username: "bobalice", Email: "bob@test.com"}
	repo.Put(alice)
	repo.Put(bob)

	// 搜索结果排除搜索者自身
	result, err := svc.SearchUsers(context.Background(), alice.Id.Hex(), "alice")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "bobalice", result[0].Username)

	// 空白关键词报参数错误
	_, err = svc.SearchUsers(context.Background(), alice.Id.Hex(), "   ")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestContacts(t *testing.T) {
	svc, repo := newService()
	alice := &model.User{Username: "alice", Email: "alice@test.com"}
	bob := &model.User{Username: "bob", Email: "bob@test.com"}
	repo.Put(alice)
	repo.Put(bob)

	// 不能添加自己
	err := svc.AddContact(context.Background(), alice.Id.Hex(), alice.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 目标不存在
	err = svc.AddContact(context.Background(), alice.Id.Hex(), primitive.NewObjectID().Hex())
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))

	// 正常添加（单向）
	require.NoError(t, svc.AddContact(context.Background(), alice.Id.Hex(), bob.Id.Hex()))
	contacts, err := svc.GetContacts(context.Background(), alice.Id.Hex())
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "bob", contacts[0].Username)

	// 对方的联系人列表不受影响
	contacts, err = svc.GetContacts(context.Background(), bob.Id.Hex())
	require.NoError(t, err)
	assert.Empty(t, contacts)

	// 重复添加冲突
	err = svc.AddContact(context.Background(), alice.Id.Hex(), bob.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 移除后列表为空，再移除报未找到
	require.NoError(t, svc.RemoveContact(context.Background(), alice.Id.Hex(), bob.Id.Hex()))
	contacts, err = svc.GetContacts(context.Background(), alice.Id.Hex())
	require.NoError(t, err)
	assert.Empty(t, contacts)
	err = svc.RemoveContact(context.Background(), alice.Id.Hex(), bob.Id.Hex())
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestInvalidObjectID(t *testing.T) {
	svc, _ := newService()

	_, err := svc.GetUser(context.Background(), "not-an-object-id")
	assert.Equal(t, errorx.CodeInvalidFormat, errorx.GetCode(err))
}
