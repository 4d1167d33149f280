package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/pkg/logger"
)

// Booking lifecycle event types
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published on every booking lifecycle change
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	VenueID    string    `json:"venue_id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	Price      *float64  `json:"price,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher emits booking lifecycle events
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event BookingEvent) error
	Close()
}

// KafkaEventPublisher publishes events to a Kafka topic keyed by venue id so
// events for one venue stay ordered within a partition.
type KafkaEventPublisher struct {
	client *kgo.Client
	topic  string
}

var _ EventPublisher = (*KafkaEventPublisher)(nil)

// NewKafkaEventPublisher creates a Kafka-backed publisher
func NewKafkaEventPublisher(brokers []string, clientID, topic string) (*KafkaEventPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &KafkaEventPublisher{client: client, topic: topic}, nil
}

// PublishBookingEvent produces the event asynchronously. Delivery failures
// are logged, not surfaced; events must never fail a booking write.
func (p *KafkaEventPublisher) PublishBookingEvent(ctx context.Context, event BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.VenueID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			logger.Get().Error("failed to publish booking event",
				zap.String("type", event.Type),
				zap.String("booking_id", event.BookingID),
				zap.Error(err),
			)
		}
	})
	return nil
}

// Close flushes pending records and shuts the client down
func (p *KafkaEventPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}

// NoOpEventPublisher is used when no brokers are configured
type NoOpEventPublisher struct{}

var _ EventPublisher = (*NoOpEventPublisher)(nil)

// NewNoOpEventPublisher creates a publisher that drops all events
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishBookingEvent does nothing
func (p *NoOpEventPublisher) PublishBookingEvent(context.Context, BookingEvent) error {
	return nil
}

// Close does nothing
func (p *NoOpEventPublisher) Close() {}

// NewBookingEvent builds an event from a booking's current state
func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		VenueID:    b.VenueID,
		UserID:     b.UserID,
		Date:       b.Date,
		Status:     string(b.Status),
		Price:      b.Price,
		OccurredAt: time.Now().UTC(),
	}
}
