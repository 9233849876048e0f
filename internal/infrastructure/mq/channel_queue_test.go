package mq_test

import (
	"context"
	"testing"
	"time"

	"mingle_chat_server/internal/infrastructure/mq"
	"mingle_chat_server/internal/model"
	"mingle_chat_server/internal/testutil"
	"mingle_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChannelQueuePublishConsume(t *testing.T) {
	q := mq.NewChannelQueue()
	defer q.Close()

	recipient := primitive.NewObjectID()
	event := &mq.NotificationEvent{
		Recipient: recipient,
		Content:   "新消息",
		Type:      model.NotificationMessage,
	}
	require.NoError(t, q.Publish(context.Background(), event))

	received := make(chan *mq.NotificationEvent, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Consume(ctx, func(_ context.Context, e *mq.NotificationEvent) error {
		received <- e
		return nil
	})

	select {
	case got := <-received:
		assert.Equal(t, recipient, got.Recipient)
		assert.Equal(t, "新消息", got.Content)
	case <-time.After(time.Second):
		t.Fatal("event not consumed")
	}
}

func TestChannelQueueFullDropsEvent(t *testing.T) {
	// 没有消费者，填满缓冲后再发布应立即失败而非阻塞
	q := mq.NewChannelQueue()
	defer q.Close()

	event := &mq.NotificationEvent{Recipient: primitive.NewObjectID()}
	for {
		if err := q.Publish(context.Background(), event); err != nil {
			assert.Equal(t, errorx.CodeServerBusy, errorx.GetCode(err))
			return
		}
	}
}

func TestChannelQueueConsumeStopsOnCancel(t *testing.T) {
	q := mq.NewChannelQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Consume(ctx, func(_ context.Context, _ *mq.NotificationEvent) error { return nil })
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume did not stop after cancel")
	}
}

func TestChannelQueueCloseIdempotent(t *testing.T) {
	q := mq.NewChannelQueue()
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
}

func TestDispatcherPersistsEvents(t *testing.T) {
	q := mq.NewChannelQueue()
	repo := testutil.NewMemNotificationRepo()
	d := mq.NewDispatcher(q, repo)
	d.Start()
	defer d.Stop()

	recipient := primitive.NewObjectID()
	related := primitive.NewObjectID()
	require.NoError(t, q.Publish(context.Background(), &mq.NotificationEvent{
		Recipient: recipient,
		Content:   "alice 在 讨论组 发来新消息",
		Type:      model.NotificationMessage,
		RelatedTo: related,
		OnModel:   model.RelatedMessage,
	}))

	// 等待后台协程落库
	deadline := time.Now().Add(2 * time.Second)
	for {
		notifications, err := repo.FindByRecipient(context.Background(), recipient)
		require.NoError(t, err)
		if len(notifications) == 1 {
			n := notifications[0]
			assert.Equal(t, model.NotificationMessage, n.Type)
			assert.Equal(t, related, n.RelatedTo)
			assert.Equal(t, model.RelatedMessage, n.OnModel)
			assert.False(t, n.IsRead)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("event not persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
