package notification

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

func newService() (*Service, *testutil.MemNotificationRepo) {
	repo := testutil.NewMemNotificationRepo()
	return NewNotificationService(repo), repo
}

func TestCreateNotification(t *testing.T) {
	svc, _ := newService()
	recipient := primitive.NewObjectID()
	related := primitive.NewObjectID()

	// type 缺省为 system
	n, err := svc.CreateNotification(context.Background(), request.CreateNotificationRequest{
		Recipient: recipient.Hex(),
		Content:   "欢迎加入",
	})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationSystem, n.Type)
	assert.False(t, n.IsRead)

	// 带多态引用
	n, err = svc.CreateNotification(context.Background(), request.CreateNotificationRequest{
		Recipient: recipient.Hex(),
		Content:   "新消息",
		Type:      "message",
		RelatedTo: related.Hex(),
		OnModel:   "Message",
	})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationMessage, n.Type)
	assert.Equal(t, related, n.RelatedTo)
	assert.Equal(t, model.RelatedMessage, n.OnModel)

	// 未知类别
	_, err = svc.CreateNotification(context.Background(), request.CreateNotificationRequest{
		Recipient: recipient.Hex(), Content: "x", Type: "broadcast",
	})
	assert.Equal(t, errorx.CodeValidation, errorx.GetCode(err))

	// related_to 与 on_model 必须成对出现
	_, err = svc.CreateNotification(context.Background(), request.CreateNotificationRequest{
		Recipient: recipient.Hex(), Content: "x", RelatedTo: related.Hex(),
	})
	assert.Equal(t, errorx.CodeValidation, errorx.GetCode(err))
}

func TestMarkReadRecipientOnly(t *testing.T) {
	svc, repo := newService()
	recipient := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	n := &model.Notification{Recipient: recipient, Content: "hi", Type: model.NotificationSystem}
	repo.Put(n)

	// 非接收者不可操作
	err := svc.MarkRead(context.Background(), stranger.Hex(), n.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 接收者标记已读，幂等
	require.NoError(t, svc.MarkRead(context.Background(), recipient.Hex(), n.Id.Hex()))
	require.NoError(t, svc.MarkRead(context.Background(), recipient.Hex(), n.Id.Hex()))

	got, err := repo.FindById(context.Background(), n.Id)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestCountUnreadAndMarkAllRead(t *testing.T) {
	svc, repo := newService()
	recipient := primitive.NewObjectID()
	other := primitive.NewObjectID()

	repo.Put(&model.Notification{Recipient: recipient, Content: "a"})
	repo.Put(&model.Notification{Recipient: recipient, Content: "b"})
	repo.Put(&model.Notification{Recipient: recipient, Content: "c", IsRead: true})
	repo.Put(&model.Notification{Recipient: other, Content: "d"})

	count, err := svc.CountUnread(context.Background(), recipient.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Count)

	// 一键已读返回更新条数，只影响自己的通知
	resp, err := svc.MarkAllRead(context.Background(), recipient.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Updated)

	count, err = svc.CountUnread(context.Background(), recipient.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count.Count)

	count, err = svc.CountUnread(context.Background(), other.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count.Count)
}

func TestDeleteNotification(t *testing.T) {
	svc, repo := newService()
	recipient := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	n := &model.Notification{Recipient: recipient, Content: "bye"}
	repo.Put(n)

	err := svc.DeleteNotification(context.Background(), stranger.Hex(), n.Id.Hex())
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	require.NoError(t, svc.DeleteNotification(context.Background(), recipient.Hex(), n.Id.Hex()))
	_, err = repo.FindById(context.Background(), n.Id)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}
