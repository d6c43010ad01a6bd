package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/kiosk-orders/internal/events"
	"github.com/segmentio/kafka-go"
)

const headerEventType = "event_type"

// Producer publishes events keyed by aggregate id, so every event of one
// order lands on the same partition.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func toMessage(event events.Event) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(event.AggregateID),
		Value:   data,
		Time:    event.Timestamp,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(event.EventType)}},
	}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
