package storage

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"
)

// KafkaChannel publishes order updates keyed by session so every update of
// one conversation lands on the same partition in order.
type KafkaChannel struct {
	Writer *kafka.Writer
}

func NewKafkaChannel(writer *kafka.Writer) *KafkaChannel {
	return &KafkaChannel{Writer: writer}
}

var _ service.NotificationChannel = (*KafkaChannel)(nil)

func (c *KafkaChannel) Name() string { return "kafka" }

func (c *KafkaChannel) Send(ctx context.Context, update domain.OrderUpdate) error {
	payload, _ := json.Marshal(update)
	return c.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(update.SessionID),
		Value: payload,
	})
}
