package kafka_middleware

import (
	"context"
	"time"

	"vistoria/pkg/kafka"
	"vistoria/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaMessage("publish", msg.GetEventType(), err, time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaMessage("consume", msg.GetEventType(), err, time.Since(start))
		return err
	}
}
