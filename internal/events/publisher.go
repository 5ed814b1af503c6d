// Package events publishes booking lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"github.com/example/campus-portal/internal/application"
)

const (
	// Source identifies this service in event headers.
	Source = "campus-portal"

	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("events: publisher closed")

// Config configures the Kafka publisher.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// Envelope is the JSON payload written for every booking event.
type Envelope struct {
	EventID    string      `json:"event_id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ActorID    string      `json:"actor_id"`
	Booking    BookingBody `json:"booking"`
}

// BookingBody is the booking snapshot carried by an event.
type BookingBody struct {
	ID          int64  `json:"id"`
	ClassroomID string `json:"classroom_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	OwnerID     string `json:"owner_id"`
	OwnerRole   string `json:"owner_role"`
	Purpose     string `json:"purpose,omitempty"`
	Status      string `json:"status"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes booking events to a Kafka topic keyed by classroom,
// so events for one classroom stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	newID  func() string

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher builds a publisher for the configured brokers and topic.
func NewKafkaPublisher(cfg Config, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}

	errorLogger := logger.With("component", "kafka")
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		MaxAttempts:  1,
		BatchTimeout: batchTimeout,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			errorLogger.Error(fmt.Sprintf(msg, args...))
		}),
	}

	return newKafkaPublisher(writer, logger), nil
}

func newKafkaPublisher(writer messageWriter, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: writer, logger: logger, newID: uuid.NewString}
}

// PublishBookingEvent implements application.EventPublisher.
func (p *KafkaPublisher) PublishBookingEvent(ctx context.Context, event application.BookingEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg, err := buildMessage(p.newID(), event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "booking event published",
		"event_type", string(event.Type),
		"booking_id", event.Booking.ID,
	)
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func buildMessage(eventID string, event application.BookingEvent) (kafka.Message, error) {
	occurredAt := event.OccurredAt.UTC()
	envelope := Envelope{
		EventID:    eventID,
		Type:       string(event.Type),
		OccurredAt: occurredAt,
		ActorID:    event.ActorID,
		Booking: BookingBody{
			ID:          event.Booking.ID,
			ClassroomID: event.Booking.ClassroomID,
			Date:        event.Booking.Date,
			StartTime:   event.Booking.StartTime,
			EndTime:     event.Booking.EndTime,
			OwnerID:     event.Booking.OwnerID,
			OwnerRole:   string(event.Booking.OwnerRole),
			Purpose:     event.Booking.Purpose,
			Status:      string(event.Booking.Status),
		},
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.Booking.ClassroomID),
		Value: value,
		Time:  occurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(eventID)},
			{Key: HeaderEventType, Value: []byte(event.Type)},
			{Key: HeaderSource, Value: []byte(Source)},
			{Key: HeaderTimestamp, Value: []byte(strconv.FormatInt(occurredAt.UnixMilli(), 10))},
		},
	}, nil
}

// NopPublisher discards events. It is used when no brokers are configured.
type NopPublisher struct{}

// PublishBookingEvent implements application.EventPublisher.
func (NopPublisher) PublishBookingEvent(context.Context, application.BookingEvent) error {
	return nil
}

// Close implements io.Closer.
func (NopPublisher) Close() error { return nil }
