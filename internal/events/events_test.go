package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/events"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/testing/testnats"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestEmitter(t *testing.T) {
	t.Run("PublishesEvent", func(t *testing.T) {
		pub := &recordingPublisher{}
		emitter := events.NewEmitter(pub, testLogger(), metrics.NewMock())

		emitter.Emit(context.Background(), events.StudentCreated, "student", "abc123")

		require.Len(t, pub.events, 1)
		assert.Equal(t, events.StudentCreated, pub.events[0].Type)
		assert.Equal(t, "student", pub.events[0].Resource)
		assert.Equal(t, "abc123", pub.events[0].ResourceID)
		assert.False(t, pub.events[0].OccurredAt.IsZero())
	})

	t.Run("PublishFailureIsSwallowed", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		emitter := events.NewEmitter(pub, testLogger(), metrics.NewMock())

		assert.NotPanics(t, func() {
			emitter.Emit(context.Background(), events.SubjectDeleted, "subject", "x")
		})
		assert.Len(t, pub.events, 1)
	})

	t.Run("NilEmitter", func(t *testing.T) {
		var emitter *events.Emitter
		assert.NotPanics(t, func() {
			emitter.Emit(context.Background(), events.UserSignedUp, "user", "u1")
		})
		assert.NoError(t, emitter.Close())
	})
}

func TestKafkaPublisher(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "stu-1" {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event events.Event
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.Type != events.StudentDeleted {
			return errors.New("unexpected type " + string(event.Type))
		}
		return nil
	})

	publisher := events.NewKafkaPublisherWithProducer(producer, "school.events", testLogger())

	err := publisher.Publish(context.Background(), events.Event{
		Type:       events.StudentDeleted,
		Resource:   "student",
		ResourceID: "stu-1",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestNATSPublisherWithContainer(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	subject := "test.events." + strings.ReplaceAll(t.Name(), "/", ".")
	publisher, err := events.NewNATSPublisher(natsContainer.URL, subject, testLogger())
	require.NoError(t, err)
	defer publisher.Close()

	nc := natsContainer.Connect(t)
	received := make(chan *nats.Msg, 1)
	_, err = nc.Subscribe(subject+".>", func(msg *nats.Msg) {
		received <- msg
	})
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	err = publisher.Publish(context.Background(), events.Event{
		Type:       events.SubjectCreated,
		Resource:   "subject",
		ResourceID: "sub-1",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, subject+".subject.created", msg.Subject)
		var event events.Event
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, "sub-1", event.ResourceID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not received on NATS within timeout")
	}
}
