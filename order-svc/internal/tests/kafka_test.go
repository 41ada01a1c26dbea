package tests

import (
	"context"
	"encoding/json"
	"testing"

	"kebab-orders/order-svc/internal/storage"
	"kebab-orders/pkg/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestKafkaPublisher_PublishOrderEvent(t *testing.T) {
	writer := &recordingWriter{}
	publisher := storage.NewKafkaPublisher(writer)

	event := domain.NewOrderEvent(domain.EventStatusChanged, *storedOrder("ORD-1", domain.StatusReady), fixedNow)
	require.NoError(t, publisher.PublishOrderEvent(context.Background(), event))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("ORD-1"), writer.messages[0].Key)

	var decoded domain.OrderEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, domain.EventStatusChanged, decoded.Type)
	assert.Equal(t, domain.StatusReady, decoded.Status)
	assert.Equal(t, "12.50", decoded.Total)
	assert.True(t, fixedNow.Equal(decoded.Timestamp))
}
