package kafka_middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vistoria/pkg/kafka"
	"vistoria/pkg/logger"
	"vistoria/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(eventType string) kafka.Message {
	return kafka.Message{Key: "eq-1", Value: []byte("{}"), Headers: map[string]string{kafka.HeaderEventType: eventType}}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New("mw_test")

	publish := MetricsProducerMiddleware(m)
	require.NoError(t, publish(context.Background(), message("booking.moved"), func(context.Context, kafka.Message) error { return nil }))

	consume := MetricsConsumerMiddleware(m)
	boom := errors.New("boom")
	assert.ErrorIs(t, consume(context.Background(), message("booking.moved"), func(context.Context, kafka.Message) error { return boom }), boom)

	expected := `
# HELP mw_test_kafka_messages_total Lifecycle events published or consumed, by direction, type and result.
# TYPE mw_test_kafka_messages_total counter
mw_test_kafka_messages_total{direction="consume",event_type="booking.moved",result="error"} 1
mw_test_kafka_messages_total{direction="publish",event_type="booking.moved",result="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "mw_test_kafka_messages_total"))
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	boom := errors.New("boom")

	publish := LoggingProducerMiddleware(logger.Nop())
	assert.ErrorIs(t, publish(context.Background(), message("x"), func(context.Context, kafka.Message) error { return boom }), boom)

	consume := LoggingConsumerMiddleware(logger.Nop())
	assert.NoError(t, consume(context.Background(), message("x"), func(context.Context, kafka.Message) error { return nil }))
}
