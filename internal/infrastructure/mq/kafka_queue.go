package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"mingle_chat_server/internal/config"
	"mingle_chat_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaQueue Kafka 通知队列
// 多实例部署时使用，按接收者 id 做 key 哈希分区
type KafkaQueue struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

// NewKafkaQueue 创建 Kafka 通知队列
// 按需创建 topic 后初始化 writer 和 reader
func NewKafkaQueue() (*KafkaQueue, error) {
	conf := config.GetConfig().KafkaConfig

	if err := createTopic(conf); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(conf.HostPort),
		Topic:                  conf.NotificationTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           time.Duration(conf.Timeout) * time.Second,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{conf.HostPort},
		Topic:          conf.NotificationTopic,
		CommitInterval: time.Duration(conf.Timeout) * time.Second,
		GroupID:        "notification",
		StartOffset:    kafka.LastOffset,
	})
	zap.L().Info("kafka notification queue ready", zap.String("topic", conf.NotificationTopic))
	return &KafkaQueue{writer: writer, reader: reader}, nil
}

// createTopic 创建 topic，已存在时幂等
func createTopic(conf config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", conf.HostPort)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "dial kafka")
	}
	defer conn.Close()

	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             conf.NotificationTopic,
			NumPartitions:     conf.Partition,
			ReplicationFactor: 1,
		},
	}
	if err = conn.CreateTopics(topicConfigs...); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "create kafka topic")
	}
	return nil
}

// Publish 发布通知事件
func (q *KafkaQueue) Publish(ctx context.Context, event *NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidFormat, "marshal notification event")
	}
	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Recipient.Hex()),
		Value: value,
	})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "write notification event to kafka")
	}
	return nil
}

// Consume 循环消费事件直到 reader 关闭或 ctx 取消
func (q *KafkaQueue) Consume(ctx context.Context, handler func(ctx context.Context, event *NotificationEvent) error) {
	for {
		kafkaMessage, err := q.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("read notification event from kafka failed", zap.Error(err))
			continue
		}
		var event NotificationEvent
		if err := json.Unmarshal(kafkaMessage.Value, &event); err != nil {
			zap.L().Error("unmarshal notification event failed", zap.Error(err))
			continue
		}
		if err := handler(ctx, &event); err != nil {
			zap.L().Error("handle notification event failed", zap.Error(err))
		}
	}
}

// Close 关闭 writer 和 reader
func (q *KafkaQueue) Close() error {
	if err := q.writer.Close(); err != nil {
		zap.L().Error("close kafka writer failed", zap.Error(err))
	}
	if err := q.reader.Close(); err != nil {
		zap.L().Error("close kafka reader failed", zap.Error(err))
		return err
	}
	return nil
}

var _ NotificationQueue = (*KafkaQueue)(nil)
