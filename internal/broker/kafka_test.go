// internal/broker/kafka_test.go
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEventEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "orders"}

	err := p.PublishEvent(context.Background(), "ORD-1-2", map[string]interface{}{"orderId": 9})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	assert.Equal(t, "ORD-1-2", string(w.messages[0].Key))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, float64(9), decoded["orderId"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishEventWrapsWriterErrors(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}, topic: "orders"}

	err := p.PublishEvent(context.Background(), "k", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestPublishEventRejectsUnencodableEvents(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "orders"}

	err := p.PublishEvent(context.Background(), "k", make(chan int))
	require.Error(t, err)
	assert.Empty(t, w.messages)
}
