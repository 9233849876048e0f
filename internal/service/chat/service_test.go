package chat

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

// fixture 组装一套聊天服务测试环境
type fixture struct {
	svc      *Service
	userRepo *testutil.MemUserRepo
	chatRepo *testutil.MemChatRepo
	cache    *testutil.MemCache
	queue    *testutil.MemQueue
}

func newFixture() *fixture {
	userRepo := testutil.NewMemUserRepo()
	chatRepo := testutil.NewMemChatRepo()
	cache := testutil.NewMemCache()
	queue := testutil.NewMemQueue()
	return &fixture{
		svc:      NewChatService(chatRepo, userRepo, cache, queue),
		userRepo: userRepo,
		chatRepo: chatRepo,
		cache:    cache,
		queue:    queue,
	}
}

func (f *fixture) addUser(name string) *model.User {
	u := &model.User{Username: name, Email: name + "@test.com"}
	f.userRepo.Put(u)
	return u
}

func TestCreateChat(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "项目群",
		IsGroup: true,
		Members: []string{bob.Id.Hex(), bob.Id.Hex(), alice.Id.Hex()},
	})
	require.NoError(t, err)

	// 创建者在首位，重复成员被去重
	require.Len(t, chat.Members, 2)
	assert.Equal(t, alice.Id, chat.Members[0])
	assert.True(t, chat.IsMember(bob.Id))

	// 创建者是唯一管理员
	require.Len(t, chat.Managers, 1)
	assert.Equal(t, alice.Id, chat.Managers[0])

	// 双方的聊天引用都被维护
	u, _ := f.userRepo.FindById(context.Background(), alice.Id)
	assert.Contains(t, u.Chats, chat.Id)
	u, _ = f.userRepo.FindById(context.Background(), bob.Id)
	assert.Contains(t, u.Chats, chat.Id)

	// 只有被拉入的成员收到通知，创建者不通知自己
	assert.Empty(t, f.queue.EventsFor(alice.Id))
	assert.Len(t, f.queue.EventsFor(bob.Id), 1)
}

func TestCreateChatUnknownMember(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")

	_, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "幽灵群",
		Members: []string{primitive.NewObjectID().Hex()},
	})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))
}

func TestGetChatMemberOnly(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	eve := f.addUser("eve")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{Name: "私密群"})
	require.NoError(t, err)

	_, err = f.svc.GetChat(context.Background(), eve.Id.Hex(), chat.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	got, err := f.svc.GetChat(context.Background(), alice.Id.Hex(), chat.Id.Hex())
	require.NoError(t, err)
	assert.Equal(t, chat.Id, got.Id)
}

func TestAddMember(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	carol := f.addUser("carol")
	eve := f.addUser("eve")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "群",
		Members: []string{bob.Id.Hex()},
	})
	require.NoError(t, err)

	// 普通成员（非管理员）也可以拉人
	updated, err := f.svc.AddMember(context.Background(), bob.Id.Hex(), chat.Id.Hex(), carol.Id.Hex())
	require.NoError(t, err)
	assert.True(t, updated.IsMember(carol.Id))
	assert.False(t, updated.IsManager(carol.Id))
	assert.Len(t, f.queue.EventsFor(carol.Id), 1)

	// 非成员不能拉人
	outsider := f.addUser("dave")
	_, err = f.svc.AddMember(context.Background(), eve.Id.Hex(), chat.Id.Hex(), outsider.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 重复添加冲突
	_, err = f.svc.AddMember(context.Background(), alice.Id.Hex(), chat.Id.Hex(), carol.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 目标用户不存在
	_, err = f.svc.AddMember(context.Background(), alice.Id.Hex(), chat.Id.Hex(), primitive.NewObjectID().Hex())
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))
}

func TestRemoveMember(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	carol := f.addUser("carol")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "群",
		Members: []string{bob.Id.Hex(), carol.Id.Hex()},
	})
	require.NoError(t, err)

	// 普通成员无权移除
	_, err = f.svc.RemoveMember(context.Background(), bob.Id.Hex(), chat.Id.Hex(), carol.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 管理员不能通过移除操作移除自己
	_, err = f.svc.RemoveMember(context.Background(), alice.Id.Hex(), chat.Id.Hex(), alice.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 管理员移除普通成员
	updated, err := f.svc.RemoveMember(context.Background(), alice.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	require.NoError(t, err)
	assert.False(t, updated.IsMember(bob.Id))

	// 被移除成员的聊天引用同步清理
	u, _ := f.userRepo.FindById(context.Background(), bob.Id)
	assert.NotContains(t, u.Chats, chat.Id)

	// 移除非成员返回未找到
	_, err = f.svc.RemoveMember(context.Background(), alice.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestRemoveMemberDropsManagerRole(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "群",
		Members: []string{bob.Id.Hex()},
	})
	require.NoError(t, err)

	_, err = f.svc.AddManager(context.Background(), alice.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	require.NoError(t, err)

	// 移除成员后其管理员身份一并失去，管理员始终是成员的子集
	updated, err := f.svc.RemoveMember(context.Background(), alice.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	require.NoError(t, err)
	assert.False(t, updated.IsMember(bob.Id))
	assert.False(t, updated.IsManager(bob.Id))
}

func TestAddManager(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	carol := f.addUser("carol")
	eve := f.addUser("eve")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "群",
		Members: []string{bob.Id.Hex(), carol.Id.Hex()},
	})
	require.NoError(t, err)

	// 任意成员可以提升管理员
	updated, err := f.svc.AddManager(context.Background(), bob.Id.Hex(), chat.Id.Hex(), carol.Id.Hex())
	require.NoError(t, err)
	assert.True(t, updated.IsManager(carol.Id))

	// 非成员不能操作
	_, err = f.svc.AddManager(context.Background(), eve.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 目标不是成员时冲突
	_, err = f.svc.AddManager(context.Background(), alice.Id.Hex(), chat.Id.Hex(), eve.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 重复提升冲突
	_, err = f.svc.AddManager(context.Background(), alice.Id.Hex(), chat.Id.Hex(), carol.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestRemoveManager(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	carol := f.addUser("carol")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "群",
		Members: []string{bob.Id.Hex(), carol.Id.Hex()},
	})
	require.NoError(t, err)
	_, err = f.svc.AddManager(context.Background(), alice.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	require.NoError(t, err)

	// 普通成员无权撤销
	_, err = f.svc.RemoveManager(context.Background(), carol.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 不能撤销自己
	_, err = f.svc.RemoveManager(context.Background(), alice.Id.Hex(), chat.Id.Hex(), alice.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 撤销后仍是普通成员
	updated, err := f.svc.RemoveManager(context.Background(), alice.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	require.NoError(t, err)
	assert.False(t, updated.IsManager(bob.Id))
	assert.True(t, updated.IsMember(bob.Id))

	// 目标不是管理员时未找到
	_, err = f.svc.RemoveManager(context.Background(), alice.Id.Hex(), chat.Id.Hex(), carol.Id.Hex())
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestLeaveChatHandsOverManager(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	carol := f.addUser("carol")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "群",
		Members: []string{bob.Id.Hex(), carol.Id.Hex()},
	})
	require.NoError(t, err)

	// 唯一管理员退出，权限移交给剩余成员中的第一位
	require.NoError(t, f.svc.LeaveChat(context.Background(), alice.Id.Hex(), chat.Id.Hex()))

	updated, err := f.chatRepo.FindById(context.Background(), chat.Id)
	require.NoError(t, err)
	assert.False(t, updated.IsMember(alice.Id))
	require.Len(t, updated.Managers, 1)
	assert.Equal(t, bob.Id, updated.Managers[0])
}

func TestLeaveChatLastMemberDeletes(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{Name: "独聊"})
	require.NoError(t, err)

	require.NoError(t, f.svc.LeaveChat(context.Background(), alice.Id.Hex(), chat.Id.Hex()))

	_, err = f.chatRepo.FindById(context.Background(), chat.Id)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	u, _ := f.userRepo.FindById(context.Background(), alice.Id)
	assert.NotContains(t, u.Chats, chat.Id)
}

func TestLeaveChatNonMember(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	eve := f.addUser("eve")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{Name: "群"})
	require.NoError(t, err)

	err = f.svc.LeaveChat(context.Background(), eve.Id.Hex(), chat.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestDeleteChatActsAsLeave(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "群",
		Members: []string{bob.Id.Hex()},
	})
	require.NoError(t, err)

	// 还有其他成员时删除只是退出
	require.NoError(t, f.svc.DeleteChat(context.Background(), alice.Id.Hex(), chat.Id.Hex()))
	updated, err := f.chatRepo.FindById(context.Background(), chat.Id)
	require.NoError(t, err)
	assert.True(t, updated.IsMember(bob.Id))

	// 最后一名成员删除后聊天消失
	require.NoError(t, f.svc.DeleteChat(context.Background(), bob.Id.Hex(), chat.Id.Hex()))
	_, err = f.chatRepo.FindById(context.Background(), chat.Id)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestUpdateChatMemberOnly(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	carol := f.addUser("carol")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:    "旧名字",
		Members: []string{bob.Id.Hex()},
	})
	require.NoError(t, err)

	// 非成员不能修改
	_, err = f.svc.UpdateChat(context.Background(), carol.Id.Hex(), chat.Id.Hex(), request.UpdateChatRequest{Name: testutil.Ptr("新名字")})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 普通成员（非管理员）也可以改名
	updated, err := f.svc.UpdateChat(context.Background(), bob.Id.Hex(), chat.Id.Hex(), request.UpdateChatRequest{Name: testutil.Ptr("新名字")})
	require.NoError(t, err)
	assert.Equal(t, "新名字", updated.Name)
}

func TestUpdateChatPartialFields(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{
		Name:        "讨论组",
		Description: "旧描述",
	})
	require.NoError(t, err)

	// 未提供的字段保持原值，提供的空字符串可清空描述
	updated, err := f.svc.UpdateChat(context.Background(), alice.Id.Hex(), chat.Id.Hex(), request.UpdateChatRequest{Description: testutil.Ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "讨论组", updated.Name)
	assert.Equal(t, "", updated.Description)

	// 名称不允许清空
	_, err = f.svc.UpdateChat(context.Background(), alice.Id.Hex(), chat.Id.Hex(), request.UpdateChatRequest{Name: testutil.Ptr("")})
	assert.Equal(t, errorx.CodeValidation, errorx.GetCode(err))
}

func TestUpdateChatPhotoGroupOnly(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")

	direct, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{Name: "单聊"})
	require.NoError(t, err)
	group, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{Name: "群聊", IsGroup: true})
	require.NoError(t, err)

	_, err = f.svc.UpdateChat(context.Background(), alice.Id.Hex(), direct.Id.Hex(), request.UpdateChatRequest{Photo: testutil.Ptr("p.png")})
	assert.Equal(t, errorx.CodeValidation, errorx.GetCode(err))

	updated, err := f.svc.UpdateChat(context.Background(), alice.Id.Hex(), group.Id.Hex(), request.UpdateChatRequest{Photo: testutil.Ptr("p.png")})
	require.NoError(t, err)
	assert.Equal(t, "p.png", updated.Photo)
}

func TestGetChatsUsesCache(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{Name: "群"})
	require.NoError(t, err)

	// 首次回源并写入缓存
	chats, err := f.svc.GetChats(context.Background(), alice.Id.Hex())
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, chat.Id, chats[0].Id)
	assert.NotEmpty(t, f.cache.Values["chat_list:"+alice.Id.Hex()])

	// 缓存损坏时自动回源
	f.cache.Values["chat_list:"+alice.Id.Hex()] = "not-json"
	chats, err = f.svc.GetChats(context.Background(), alice.Id.Hex())
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestMembershipChangeInvalidatesCache(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")

	chat, err := f.svc.CreateChat(context.Background(), alice.Id.Hex(), request.CreateChatRequest{Name: "群"})
	require.NoError(t, err)

	_, err = f.svc.GetChats(context.Background(), alice.Id.Hex())
	require.NoError(t, err)
	require.NotEmpty(t, f.cache.Values["chat_list:"+alice.Id.Hex()])

	// 成员变更后缓存被失效（MemCache 的 SubmitTask 同步执行）
	_, err = f.svc.AddMember(context.Background(), alice.Id.Hex(), chat.Id.Hex(), bob.Id.Hex())
	require.NoError(t, err)
	assert.Empty(t, f.cache.Values["chat_list:"+alice.Id.Hex()])
}
