package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

func headerValue(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishReservationEvent(t *testing.T) {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})

	producer := mocks.NewSyncProducer(t, nil)
	t.Cleanup(func() { producer.Close() })

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, TopicStockReservations, msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "order_9", string(key))

		assert.Equal(t, EventTypeStockReserved, headerValue(msg, "event_type"))
		assert.NotEmpty(t, headerValue(msg, "event_id"))
		assert.NotEmpty(t, headerValue(msg, "traceparent"))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var event domain.ReservationEvent
		require.NoError(t, json.Unmarshal(value, &event))
		assert.Equal(t, uint(9), event.OrderID)
		assert.Equal(t, 8, event.Quantity)
		assert.Len(t, event.Lots, 2)
		assert.False(t, event.Timestamp.IsZero())
		return nil
	})

	publisher := NewPublisherWithProducer(producer, "")
	err := publisher.PublishReservationEvent(context.Background(), domain.ReservationEvent{
		EventType: domain.EventStockReserved,
		OrderID:   9,
		ProductID: 3,
		Quantity:  8,
		Lots:      []domain.LotQuantity{{LotID: 1, Quantity: 5}, {LotID: 2, Quantity: 3}},
	})
	require.NoError(t, err)
}

func TestPublishReservationEvent_SendFails(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	t.Cleanup(func() { producer.Close() })
	brokerDown := errors.New("broker down")
	producer.ExpectSendMessageAndFail(brokerDown)

	publisher := NewPublisherWithProducer(producer, "custom-topic")
	err := publisher.PublishReservationEvent(context.Background(), domain.ReservationEvent{
		EventType: domain.EventStockReleased,
		OrderID:   1,
	})

	assert.ErrorIs(t, err, brokerDown)
	assert.Equal(t, "custom-topic", publisher.topic)
}
