package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/SAP-F-2025/exam-service/internal/config"
)

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, eventType string, data interface{}) error
	Close() error
}

// Bus bundles the publisher and subscriber sides of one transport.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Kind       string
}

// NewBus connects to Kafka when brokers are configured, otherwise it returns
// an in-process channel transport.
func NewBus(cfg config.KafkaConfig, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if !cfg.Enabled() {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 128}, wmLogger)
		return &Bus{Publisher: ch, Subscriber: ch, Kind: "gochannel"}, nil
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       cfg.Brokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: cfg.ConsumerGroup,
	}, wmLogger)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &Bus{Publisher: publisher, Subscriber: subscriber, Kind: "kafka"}, nil
}

func (b *Bus) Close() error {
	var firstErr error
	if err := b.Publisher.Close(); err != nil {
		firstErr = err
	}
	// gochannel is both sides; closing twice is a no-op
	if err := b.Subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// WatermillPublisher wraps domain events into watermill messages.
type WatermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, logger: logger}
}

func (p *WatermillPublisher) Publish(ctx context.Context, topic string, eventType string, data interface{}) error {
	event, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", eventType)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "Event published", "topic", topic, "type", eventType, "event_id", event.ID)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	Err    error
}

type PublishedEvent struct {
	Topic string
	*Event
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, eventType string, data interface{}) error {
	if m.Err != nil {
		return m.Err
	}
	event, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Event: event})
	m.mu.Unlock()
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of everything published so far.
func (m *MockEventPublisher) GetPublishedEvents() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedEvent(nil), m.events...)
}

// OfType filters recorded events by type.
func (m *MockEventPublisher) OfType(eventType string) []PublishedEvent {
	var out []PublishedEvent
	for _, e := range m.GetPublishedEvents() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
