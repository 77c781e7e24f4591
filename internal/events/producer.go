package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types published on the audit stream.
const (
	TypeLogin          = "auth.login"
	TypeLoginFailed    = "auth.login_failed"
	TypeAccountLocked  = "auth.account_locked"
	TypeLogout         = "auth.logout"
	TypeSessionRevoked = "auth.session_revoked"
	TypePasswordChange = "auth.password_changed"
	TypeSessionStatus  = "session.status_changed"
)

type Event struct {
	Type    string         `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Producer publishes audit events. A Producer built without brokers is a
// no-op, so callers never need to nil-check.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		return &Producer{}
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, eventType, key string, payload map[string]any) error {
	if p == nil || p.writer == nil {
		return nil
	}

	data, err := json.Marshal(Event{
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("events: marshal failed: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("events: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
