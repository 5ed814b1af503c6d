package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/example/campus-portal/internal/application"
	"github.com/example/campus-portal/internal/booking"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   int
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	return nil
}

func sampleEvent() application.BookingEvent {
	return application.BookingEvent{
		Type: application.BookingCreated,
		Booking: application.Booking{
			ID:          7,
			ClassroomID: "CL101",
			Date:        "2025-03-10",
			StartTime:   "09:00",
			EndTime:     "10:00",
			OwnerID:     "advisor-1",
			OwnerRole:   application.RoleAdvisor,
			Purpose:     "Office hours",
			Status:      booking.StatusApproved,
		},
		ActorID:    "advisor-1",
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func headerMap(msg kafka.Message) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("evt-1", sampleEvent())
	require.NoError(t, err)

	require.Equal(t, "CL101", string(msg.Key))
	require.Equal(t, map[string]string{
		HeaderEventID:   "evt-1",
		HeaderEventType: "booking.created",
		HeaderSource:    Source,
		HeaderTimestamp: "1740830400000",
	}, headerMap(msg))

	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	require.Equal(t, "evt-1", envelope.EventID)
	require.Equal(t, "booking.created", envelope.Type)
	require.Equal(t, int64(7), envelope.Booking.ID)
	require.Equal(t, "approved", envelope.Booking.Status)
	require.Equal(t, "advisor", envelope.Booking.OwnerRole)
}

func TestKafkaPublisherPublishes(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	publisher.newID = func() string { return "evt-42" }

	require.NoError(t, publisher.PublishBookingEvent(context.Background(), sampleEvent()))
	require.Len(t, writer.messages, 1)
	require.Equal(t, "evt-42", headerMap(writer.messages[0])[HeaderEventID])
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	publisher := newKafkaPublisher(writer, nil)

	err := publisher.PublishBookingEvent(context.Background(), sampleEvent())
	require.ErrorIs(t, err, writer.err)
}

func TestKafkaPublisherClose(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer, nil)

	require.NoError(t, publisher.Close())
	require.NoError(t, publisher.Close())
	require.Equal(t, 1, writer.closed)

	err := publisher.PublishBookingEvent(context.Background(), sampleEvent())
	require.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNewKafkaPublisherValidatesConfig(t *testing.T) {
	_, err := NewKafkaPublisher(Config{Topic: "portal.bookings"}, nil)
	require.Error(t, err)

	_, err = NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}}, nil)
	require.Error(t, err)

	publisher, err := NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "portal.bookings"}, nil)
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestNopPublisher(t *testing.T) {
	var publisher application.EventPublisher = NopPublisher{}
	require.NoError(t, publisher.PublishBookingEvent(context.Background(), sampleEvent()))
}
