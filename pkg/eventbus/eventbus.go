package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/lead-forensics/pkg/logger"
	"go.uber.org/zap"
)

// Event is the envelope published for every domain event
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope
func NewEvent(ctx context.Context, eventType, source string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		OccurredAt:    time.Now().UTC(),
		Data:          payload,
	}, nil
}

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, subject string, event *Event) error
	Close() error
}

type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Drain() error
}

// NATSBus publishes events on a NATS connection
type NATSBus struct {
	nc           conn
	flushTimeout time.Duration
}

// Connect dials NATS and returns a bus
func Connect(url, name string) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return newNATSBus(nc), nil
}

func newNATSBus(nc conn) *NATSBus {
	return &NATSBus{nc: nc, flushTimeout: 2 * time.Second}
}

// Publish sends the event and waits for the server to acknowledge the flush
func (b *NATSBus) Publish(ctx context.Context, subject string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	timeout := b.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := b.nc.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}

	logger.WithContext(ctx).Debug("Event published",
		zap.String("subject", subject),
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID),
	)
	return nil
}

// Close drains the connection
func (b *NATSBus) Close() error {
	return b.nc.Drain()
}

// Noop drops every event. Used when NATS is disabled.
type Noop struct{}

func (Noop) Publish(context.Context, string, *Event) error { return nil }
func (Noop) Close() error                                   { return nil }
