package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-service/internal/config"
	"github.com/SAP-F-2025/exam-service/internal/mail"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatermillPublisher_Publish(t *testing.T) {
	ch := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := ch.Subscribe(ctx, TopicSubmissions)
	require.NoError(t, err)

	pub := NewWatermillPublisher(ch, discardLogger())
	err = pub.Publish(ctx, TopicSubmissions, TypeSubmissionGraded, SubmissionGraded{SubmissionID: 7, Score: 85})
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		msg.Ack()
		assert.Equal(t, TypeSubmissionGraded, msg.Metadata.Get("event_type"))

		var event Event
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, msg.UUID, event.ID)
		assert.Equal(t, EventSource, event.Source)
		assert.Equal(t, EventVersion, event.Version)
		assert.False(t, event.Timestamp.IsZero())

		var graded SubmissionGraded
		require.NoError(t, event.Decode(&graded))
		assert.Equal(t, uint(7), graded.SubmissionID)
		assert.Equal(t, 85, graded.Score)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestNewBusWithoutBrokers(t *testing.T) {
	bus, err := NewBus(config.KafkaConfig{}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "gochannel", bus.Kind)
	assert.NoError(t, bus.Close())
}

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg mail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func newMessage(t *testing.T, eventType string, data interface{}) *message.Message {
	t.Helper()
	event, err := NewEvent(eventType, data)
	require.NoError(t, err)
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return message.NewMessage(event.ID, payload)
}

func TestMailConsumer_Handle(t *testing.T) {
	sender := &recordingSender{}
	consumer := NewMailConsumer(sender, discardLogger())

	msg := newMessage(t, TypeVerificationRequested, VerificationRequested{
		AccountID: 3, Username: "ana", Email: "ana@example.com", Link: "http://x/verify-email/Mw/t/",
	})
	require.NoError(t, consumer.Handle(msg))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@example.com", sender.sent[0].To.Address)
	assert.Contains(t, sender.sent[0].Body, "http://x/verify-email/Mw/t/")
}

func TestMailConsumer_IgnoresOtherEvents(t *testing.T) {
	sender := &recordingSender{}
	consumer := NewMailConsumer(sender, discardLogger())

	require.NoError(t, consumer.Handle(newMessage(t, TypeAccountRegistered, AccountRegistered{AccountID: 1})))
	require.NoError(t, consumer.Handle(message.NewMessage("x", []byte("not json"))))
	assert.Empty(t, sender.sent)
}

func TestMailConsumer_SwallowsSendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	consumer := NewMailConsumer(sender, discardLogger())

	msg := newMessage(t, TypeVerificationRequested, VerificationRequested{AccountID: 3, Email: "a@b.c"})
	assert.NoError(t, consumer.Handle(msg))
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher()
	ctx := context.Background()

	require.NoError(t, mock.Publish(ctx, TopicAccounts, TypeAccountRegistered, AccountRegistered{AccountID: 1}))
	require.NoError(t, mock.Publish(ctx, TopicAccounts, TypeVerificationRequested, VerificationRequested{AccountID: 1}))

	assert.Len(t, mock.GetPublishedEvents(), 2)
	assert.Len(t, mock.OfType(TypeVerificationRequested), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}
