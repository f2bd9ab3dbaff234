package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
)

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish writes event as JSON. key is the scope, so every event of one
// scope lands on the same partition and keeps its order.
func (p *Publisher) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(
		ctx,
		kafka.Message{
			Key:   []byte(key),
			Value: data,
		},
	)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
