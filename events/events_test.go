package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"restaurant-ordering-api/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := New(OrderCreated, 42, map[string]string{"orderNumber": "ORD1"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "order", e.Aggregate())
	assert.Equal(t, uint(42), e.AggregateID)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestKafkaPublisher(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)

	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "restaurant-events", logger.Discard())
	require.NoError(t, p.Publish(context.Background(), New(PaymentCompleted, 7, nil)))
	require.NoError(t, p.Close())

	require.NotNil(t, sent)
	assert.Equal(t, "restaurant-events", sent.Topic)
	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "payment:7", string(key))

	value, err := sent.Value.Encode()
	require.NoError(t, err)
	var decoded Event
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, PaymentCompleted, decoded.Type)
}

func TestKafkaPublisherError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "restaurant-events", logger.Discard())
	err := p.Publish(context.Background(), New(OrderCreated, 1, nil))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestRabbitPublisherRoutesByType(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{exchange: "restaurant_events", log: logger.Discard(), ch: ch}

	e := New(ReservationCreated, 3, nil)
	require.NoError(t, p.Publish(context.Background(), e))
	assert.Equal(t, "restaurant_events", ch.exchange)
	assert.Equal(t, ReservationCreated, ch.key)
	assert.Equal(t, e.ID, ch.msg.MessageId)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)

	ch.err = errors.New("channel closed")
	assert.ErrorContains(t, p.Publish(context.Background(), e), "channel closed")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), New(OrderCreated, 1, nil))
	_ = r.Publish(context.Background(), New(OrderCancelled, 1, nil))
	assert.Equal(t, []string{OrderCreated, OrderCancelled}, r.Types())
	assert.Len(t, r.Events(), 2)
}
