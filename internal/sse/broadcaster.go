package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
)

// Broadcaster pushes events to every subscriber of one registry.
type Broadcaster struct {
	registry *Registry
}

func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// Broadcast encodes event once and queues it for the subscribers registered
// right now. It never blocks on a connection: a subscriber whose queue is full
// is removed and closed, the others still get the event. Only an encoding
// failure is returned.
func (b *Broadcaster) Broadcast(event any) error {
	frame, err := Encode(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", b.registry.Name(), err)
	}

	b.registry.ForEach(func(sub *Subscriber) {
		if err := sub.Send(frame); err != nil {
			b.registry.Unregister(Handle(sub.ID))
			sub.Close()
			log.Printf("[SSE] %s: dropped subscriber %s: %v", b.registry.Name(), sub.ID, err)
		}
	})
	return nil
}

// Encode renders event as a single "data: <json>\n\n" frame.
func Encode(event any) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 8)
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}
