package kafka

import (
	"context"
	"errors"
	"testing"

	kafka_config "vistoria/pkg/kafka/config"
	"vistoria/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("eq-1").
		WithValue(map[string]int{"delta": -3600}).
		WithEventType("booking.scheduled").
		WithSource("instance-a").
		WithSchemaVersion("1").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "eq-1", msg.Key)
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "booking.scheduled", msg.GetEventType())
	assert.Equal(t, "instance-a", msg.GetSource())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded map[string]int
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, -3600, decoded["delta"])
}

func TestMessageBuilder_EncodeFailure(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	require.Error(t, err)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	assert.Equal(t, 0, msg.GetRetryCount())
	for i := 0; i < 11; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 11, msg.GetRetryCount())
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("dial tcp: Connection Refused")))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(NewTransientError("x", nil)))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("bad payload")))

	assert.True(t, ShouldRetry(errors.New("i/o timeout"), 0, 3))
	assert.False(t, ShouldRetry(errors.New("i/o timeout"), 3, 3))
	assert.False(t, ShouldRetry(errors.New("bad payload"), 0, 3))
}

func TestConsumerProcess_RetriesTransient(t *testing.T) {
	calls := 0
	c := &Consumer{
		maxRetries: 2,
		log:        logger.Nop(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			return NewTransientError("broker away", nil)
		},
	}

	err := c.Process(context.Background(), Message{Headers: map[string]string{}})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumerProcess_Middleware(t *testing.T) {
	var order []string
	c := &Consumer{
		log: logger.Nop(),
		handler: func(ctx context.Context, msg Message) error {
			order = append(order, "handler")
			return nil
		},
	}
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "inner")
		return next(ctx, msg)
	})

	require.NoError(t, c.Process(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(nil, "t", logger.Nop())
	assert.Error(t, err)

	cfg := &kafka_config.Config{Brokers: []string{"localhost:9092"}}
	_, err = NewProducer(cfg, "", logger.Nop())
	assert.Error(t, err)

	p, err := NewProducer(cfg, "vistoria.calendar", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "vistoria.calendar", p.Topic())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}), ErrProducerClosed)
}
