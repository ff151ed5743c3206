package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fitclub/internal/booking"
	"fitclub/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type publishCall struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	calls []publishCall
	err   error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, publishCall{exchange, key, msg})
	return nil
}

func (c *fakeChannel) Close() error { return nil }

var registration = booking.ClassRegistration{ID: 11, MemberID: 3, ClassID: 12}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent(booking.EventClassRegistered, "class:12", registration)
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "class:12", e.Key)

	var got booking.ClassRegistration
	require.NoError(t, json.Unmarshal(e.Payload, &got))
	assert.Equal(t, registration.ID, got.ID)

	_, err = NewEvent("bad", "k", make(chan int))
	assert.Error(t, err)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	before := testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues(booking.EventClassRegistered, "published"))

	require.NoError(t, p.Publish(context.Background(), booking.EventClassRegistered, "class:12", registration))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "class:12", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, booking.EventClassRegistered, string(msg.Headers[0].Value))

	var e Event
	require.NoError(t, json.Unmarshal(msg.Value, &e))
	assert.Equal(t, booking.EventClassRegistered, e.Type)
	assert.Equal(t, string(msg.Headers[1].Value), e.ID)

	after := testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues(booking.EventClassRegistered, "published"))
	assert.Equal(t, before+1, after)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}}
	assert.Error(t, p.Publish(context.Background(), booking.EventPTSessionScheduled, "trainer:5", booking.PTSession{}))
}

func TestNewKafkaPublisher_Validation(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "topic")
	assert.Error(t, err)
	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "fitclub.bookings")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch, exchange: "fitclub.events"}

	require.NoError(t, p.Publish(context.Background(), booking.EventPTSessionScheduled, "trainer:5", booking.PTSession{ID: 9}))
	require.Len(t, ch.calls, 1)

	call := ch.calls[0]
	assert.Equal(t, "fitclub.events", call.exchange)
	assert.Equal(t, booking.EventPTSessionScheduled, call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, "trainer:5", call.msg.Headers["resource"])
	assert.NotEmpty(t, call.msg.MessageId)

	assert.NoError(t, p.Close())
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	p := &RabbitPublisher{ch: &fakeChannel{err: amqp.ErrClosed}, exchange: "fitclub.events"}
	assert.ErrorIs(t, p.Publish(context.Background(), booking.EventClassRegistered, "class:1", registration), amqp.ErrClosed)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), "x", "y", nil))
	assert.NoError(t, p.Close())
}
