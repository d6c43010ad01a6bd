package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/example/kiosk-orders/internal/events"
	"github.com/segmentio/kafka-go"
)

type EventHandler func(ctx context.Context, event events.Event) error

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume blocks until ctx is cancelled. Messages are committed after the
// handler ran, also when it failed or the payload was not an event, so one
// bad message never stalls the group.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Kafka] Error reading message: %v", err)
			continue
		}

		if event, err := fromMessage(msg); err != nil {
			log.Printf("[Kafka] Skipping undecodable message at offset %d: %v", msg.Offset, err)
		} else if err := handler(ctx, event); err != nil {
			log.Printf("[Kafka] Error handling %s for %s: %v", event.EventType, event.AggregateID, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Kafka] Error committing offset %d: %v", msg.Offset, err)
		}
	}
}

// fromMessage decodes an event. The event_type header fills in a missing type.
func fromMessage(msg kafka.Message) (events.Event, error) {
	var event events.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return events.Event{}, err
	}
	if event.EventType == "" {
		for _, h := range msg.Headers {
			if h.Key == headerEventType {
				event.EventType = string(h.Value)
			}
		}
	}
	if event.EventType == "" {
		return events.Event{}, errors.New("event without type")
	}
	return event, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
