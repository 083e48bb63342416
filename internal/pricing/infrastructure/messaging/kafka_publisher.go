// Package messaging 提供领域事件的 Kafka 发布实现
package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/mq"
)

// Envelope 事件信封，携带类型与发布时间
type Envelope struct {
	EventType   string      `json:"event_type"`
	PublishedAt time.Time   `json:"published_at"`
	Payload     interface{} `json:"payload"`
}

// KafkaEventPublisher 通过 Kafka 发布领域事件
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

var _ domain.EventPublisher = (*KafkaEventPublisher)(nil)

// NewKafkaEventPublisher 创建事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

// Publish 以事件类型为分区键发布事件
func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType string, event interface{}) error {
	return p.producer.SendMessage(ctx, p.topic, eventType, Envelope{
		EventType:   eventType,
		PublishedAt: time.Now(),
		Payload:     event,
	})
}
