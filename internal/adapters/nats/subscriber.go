package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// Subscriber consumes tracker events from NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSegments delivers archived segments to handler through a durable
// consumer. A handler error naks the message for redelivery.
func (s *Subscriber) SubscribeSegments(ctx context.Context, durable string, handler func(ctx context.Context, seg *domain.ArchivedSegment) error) error {
	sub, err := s.js.Subscribe(SubjectSegments, func(msg *nats.Msg) {
		var seg domain.ArchivedSegment
		if err := json.Unmarshal(msg.Data, &seg); err != nil {
			// Poison message; redelivery will not help.
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &seg); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectSegments, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
