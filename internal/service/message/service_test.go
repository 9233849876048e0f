package message

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mingle_chat_server/internal/dto/request"
	"mingle_chat_server/internal/infrastructure/filestore"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/internal/service/media"
	"mingle_chat_server/internal/testutil"
	"mingle_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixture 组装一套消息服务测试环境
// 预置一个三人聊天：alice 为管理员，bob、carol 为普通成员
type fixture struct {
	svc         *Service
	messageRepo *testutil.MemMessageRepo
	chatRepo    *testutil.MemChatRepo
	mediaRepo   *testutil.MemMediaRepo
	queue       *testutil.MemQueue
	baseDir     string
	chat        *model.Chat
	alice       *model.User
	bob         *model.User
	carol       *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	userRepo := testutil.NewMemUserRepo()
	chatRepo := testutil.NewMemChatRepo()
	messageRepo := testutil.NewMemMessageRepo()
	mediaRepo := testutil.NewMemMediaRepo()
	queue := testutil.NewMemQueue()
	cache := testutil.NewMemCache()

	baseDir := t.TempDir()
	store, err := filestore.NewStore(baseDir)
	require.NoError(t, err)
	mediaSvc := media.NewMediaService(mediaRepo, store)

	alice := &model.User{Username: "alice", Email: "alice@test.com"}
	bob := &model.User{Username: "bob", Email: "bob@test.com"}
	carol := &model.User{Username: "carol", Email: "carol@test.com"}
	userRepo.Put(alice)
	userRepo.Put(bob)
	userRepo.Put(carol)

	chat := &model.Chat{
		Name:     "讨论组",
		IsGroup:  true,
		Managers: []primitive.ObjectID{alice.Id},
		Members:  []primitive.ObjectID{alice.Id, bob.Id, carol.Id},
	}
	chatRepo.Put(chat)

	return &fixture{
		svc:         NewMessageService(messageRepo, chatRepo, userRepo, mediaSvc, queue, cache),
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		mediaRepo:   mediaRepo,
		queue:       queue,
		baseDir:     baseDir,
		chat:        chat,
		alice:       alice,
		bob:         bob,
		carol:       carol,
	}
}

func (f *fixture) send(t *testing.T, sender *model.User, text string) *model.Message {
	t.Helper()
	m, err := f.svc.SendMessage(context.Background(), sender.Id.Hex(), f.chat.Id.Hex(), request.SendMessageRequest{Text: text})
	require.NoError(t, err)
	return m
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)

	m := f.send(t, f.bob, "大家好")
	assert.Equal(t, f.chat.Id, m.ChatId)
	assert.Equal(t, model.MediaNone, m.MediaType)
	assert.Equal(t, model.MessageActive, m.State)

	// 发送者自动在已读集合中
	assert.True(t, m.SeenByUser(f.bob.Id))
	assert.False(t, m.SeenByUser(f.alice.Id))

	// 消息被挂接到聊天
	chat, err := f.chatRepo.FindById(context.Background(), f.chat.Id)
	require.NoError(t, err)
	assert.Contains(t, chat.Messages, m.Id)

	// 其余成员各收到一条通知事件，发送者不通知自己
	assert.Empty(t, f.queue.EventsFor(f.bob.Id))
	assert.Len(t, f.queue.EventsFor(f.alice.Id), 1)
	assert.Len(t, f.queue.EventsFor(f.carol.Id), 1)
	assert.Equal(t, model.NotificationMessage, f.queue.EventsFor(f.alice.Id)[0].Type)
}

func TestSendMessageNonMember(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendMessage(context.Background(), primitive.NewObjectID().Hex(), f.chat.Id.Hex(), request.SendMessageRequest{Text: "hi"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestSendMessageAppendFailureMarksDeleted(t *testing.T) {
	f := newFixture(t)
	f.chatRepo.FailAppend = true

	_, err := f.svc.SendMessage(context.Background(), f.bob.Id.Hex(), f.chat.Id.Hex(), request.SendMessageRequest{Text: "孤儿消息"})
	require.Error(t, err)

	// 补偿路径：已落库的消息被标记删除，不会出现在聊天消息列表中
	msgs, err := f.messageRepo.FindByChat(context.Background(), f.chat.Id)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	require.Len(t, f.messageRepo.Messages, 1)
	for _, m := range f.messageRepo.Messages {
		assert.Equal(t, model.MessageDeleted, m.State)
	}

	// 失败路径不产生通知
	assert.Empty(t, f.queue.Events)
}

func TestSendMediaMessageLinksMedia(t *testing.T) {
	f := newFixture(t)

	file := testutil.MultipartFile(t, "pic.png", "image/png", []byte("bytes"))
	m, err := f.svc.SendMediaMessage(context.Background(), f.bob.Id.Hex(), f.chat.Id.Hex(), "看这张图", file)
	require.NoError(t, err)
	assert.Equal(t, model.MediaImage, m.MediaType)
	assert.Equal(t, "pic.png", m.FileName)

	// 媒体记录的引用指向消息本身
	medias, err := f.mediaRepo.FindByUploader(context.Background(), f.bob.Id)
	require.NoError(t, err)
	require.Len(t, medias, 1)
	assert.Equal(t, m.Id, medias[0].Relation.RelatedTo)
	assert.Equal(t, model.RelatedMessage, medias[0].Relation.OnModel)
}

func TestGetMessagesExcludesDeleted(t *testing.T) {
	f := newFixture(t)

	m1 := f.send(t, f.bob, "第一条")
	m2 := f.send(t, f.bob, "第二条")
	require.NoError(t, f.svc.DeleteMessage(context.Background(), f.bob.Id.Hex(), m1.Id.Hex()))

	msgs, err := f.svc.GetMessages(context.Background(), f.alice.Id.Hex(), f.chat.Id.Hex())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, m2.Id, msgs[0].Id)

	// 非成员不可见
	_, err = f.svc.GetMessages(context.Background(), primitive.NewObjectID().Hex(), f.chat.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestEditMessage(t *testing.T) {
	f := newFixture(t)
	m := f.send(t, f.bob, "原文")

	// 非发送者（即使是管理员）不能编辑
	_, err := f.svc.EditMessage(context.Background(), f.alice.Id.Hex(), m.Id.Hex(), request.EditMessageRequest{Text: "改"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 发送者编辑成功并记录编辑时间
	edited, err := f.svc.EditMessage(context.Background(), f.bob.Id.Hex(), m.Id.Hex(), request.EditMessageRequest{Text: "修订后"})
	require.NoError(t, err)
	assert.Equal(t, "修订后", edited.Text)
	require.NotNil(t, edited.UpdatedAt)
	assert.WithinDuration(t, time.Now(), *edited.UpdatedAt, time.Minute)
}

func TestEditDeletedMessage(t *testing.T) {
	f := newFixture(t)
	m := f.send(t, f.bob, "将被删除")
	require.NoError(t, f.svc.DeleteMessage(context.Background(), f.bob.Id.Hex(), m.Id.Hex()))

	_, err := f.svc.EditMessage(context.Background(), f.bob.Id.Hex(), m.Id.Hex(), request.EditMessageRequest{Text: "改"})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestEditMediaMessage(t *testing.T) {
	f := newFixture(t)

	// 直接预置一条媒体消息，绕过 multipart 上传
	m := &model.Message{
		ChatId:    f.chat.Id,
		Sender:    f.bob.Id,
		Text:      "看这张图",
		MediaType: model.MediaImage,
		MediaUrl:  "/api/media/stream/x.png",
		SeenBy:    []primitive.ObjectID{f.bob.Id},
		CreatedAt: time.Now(),
	}
	f.messageRepo.Put(m)

	_, err := f.svc.EditMessage(context.Background(), f.bob.Id.Hex(), m.Id.Hex(), request.EditMessageRequest{Text: "改"})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestDeleteMessage(t *testing.T) {
	f := newFixture(t)
	m := f.send(t, f.bob, "内容")

	// 普通成员（非发送者、非管理员）无权删除
	err := f.svc.DeleteMessage(context.Background(), f.carol.Id.Hex(), m.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 管理员可删除他人消息
	require.NoError(t, f.svc.DeleteMessage(context.Background(), f.alice.Id.Hex(), m.Id.Hex()))

	// 软删除摘除内容与媒体字段，记录保留
	got, err := f.messageRepo.FindById(context.Background(), m.Id)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
	assert.Empty(t, got.Text)
	assert.Equal(t, model.MediaNone, got.MediaType)
	assert.Empty(t, got.MediaUrl)
	assert.Empty(t, got.FileName)

	// 重复删除冲突
	err = f.svc.DeleteMessage(context.Background(), f.alice.Id.Hex(), m.Id.Hex())
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestDeleteMediaMessageCleansUpMedia(t *testing.T) {
	f := newFixture(t)

	// 预置媒体记录、物理文件和引用它的消息
	require.NoError(t, os.WriteFile(filepath.Join(f.baseDir, "att.png"), []byte("bytes"), 0o644))
	mediaRecord := &model.Media{
		Filename:     "att.png",
		OriginalName: "photo.png",
		Mimetype:     "image/png",
		UploadedBy:   f.bob.Id,
		IsPublic:     true,
	}
	f.mediaRepo.Put(mediaRecord)

	m := &model.Message{
		ChatId:    f.chat.Id,
		Sender:    f.bob.Id,
		MediaType: model.MediaImage,
		MediaUrl:  "/api/media/stream/att.png",
		FileName:  "photo.png",
		SeenBy:    []primitive.ObjectID{f.bob.Id},
		CreatedAt: time.Now(),
	}
	f.messageRepo.Put(m)

	require.NoError(t, f.svc.DeleteMessage(context.Background(), f.bob.Id.Hex(), m.Id.Hex()))

	// 媒体记录和物理文件随消息删除被清理
	_, err := f.mediaRepo.FindById(context.Background(), mediaRecord.Id)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	_, err = os.Stat(filepath.Join(f.baseDir, "att.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestMarkSeenIdempotent(t *testing.T) {
	f := newFixture(t)
	m := f.send(t, f.bob, "新消息")

	require.NoError(t, f.svc.MarkSeen(context.Background(), f.alice.Id.Hex(), m.Id.Hex()))
	// 重复标记不报错也不重复记录
	require.NoError(t, f.svc.MarkSeen(context.Background(), f.alice.Id.Hex(), m.Id.Hex()))

	got, err := f.messageRepo.FindById(context.Background(), m.Id)
	require.NoError(t, err)
	assert.Len(t, got.SeenBy, 2)
	assert.True(t, got.SeenByUser(f.alice.Id))

	// 非成员不能标记
	err = f.svc.MarkSeen(context.Background(), primitive.NewObjectID().Hex(), m.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestGetUnreadAndMarkChatSeen(t *testing.T) {
	f := newFixture(t)
	f.send(t, f.bob, "一")
	f.send(t, f.bob, "二")
	f.send(t, f.alice, "三")

	// alice 未读 bob 的两条，自己发的那条天然已读
	unread, err := f.svc.GetUnread(context.Background(), f.alice.Id.Hex(), f.chat.Id.Hex())
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	// 一键已读返回标记条数
	count, err := f.svc.MarkChatSeen(context.Background(), f.alice.Id.Hex(), f.chat.Id.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unread, err = f.svc.GetUnread(context.Background(), f.alice.Id.Hex(), f.chat.Id.Hex())
	require.NoError(t, err)
	assert.Empty(t, unread)

	// 再次一键已读没有可标记的消息
	count, err = f.svc.MarkChatSeen(context.Background(), f.alice.Id.Hex(), f.chat.Id.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
