package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type reviewData struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func TestNewEvent_Fields(t *testing.T) {
	data := reviewData{Rating: 5, Comment: "Excelente pan"}
	event, err := NewEvent("review.submitted", Aggregate{ID: "b1", Type: "tienda"}, "tiendas-web", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "review.submitted", event.EventType)
	assert.Equal(t, "b1", event.AggregateID)
	assert.Equal(t, "tienda", event.AggregateType)
	assert.Equal(t, "tiendas-web", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.Equal(t, []byte("b1"), event.Key())

	var got reviewData
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("tienda.viewed", Aggregate{ID: "b1"}, "tiendas-web", make(chan int))
	require.Error(t, err)
}

func TestEvent_RoundTrip(t *testing.T) {
	original, err := NewEvent("tienda.viewed", Aggregate{ID: "b1", Type: "tienda"}, "tiendas-web", map[string]string{"outcome": "loaded"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-abc").WithMetadata("view_id", "v-1").WithMetadata("empty", "")

	data, err := original.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, decoded.EventID)
	assert.Equal(t, "corr-abc", decoded.CorrelationID)
	assert.Equal(t, map[string]string{"view_id": "v-1"}, decoded.Metadata)
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp))
}

func TestUnmarshalEvent_InvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{nope"))
	require.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "tiendas.review.submitted", Topic("tiendas", "review", "submitted"))
	assert.Equal(t, "review.submitted", Topic("", "review", "submitted"))
	assert.Equal(t, "tiendas.tienda", Topic("tiendas.", "tienda", ""))
}

func TestProducer_Publish(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	w := &mockWriter{}
	p := NewProducerWithWriter(w, []string{"localhost:9092"}, testLogger())

	event, err := NewEvent("review.submitted", Aggregate{ID: "b1", Type: "tienda"}, "tiendas-web", reviewData{Rating: 4})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		msg := msgs[0]
		headers := msg.Headers
		carrier := NewHeaderCarrier(&headers)
		var decoded Event
		if err := json.Unmarshal(msg.Value, &decoded); err != nil {
			return false
		}
		return msg.Topic == "tiendas.review.submitted" &&
			string(msg.Key) == "b1" &&
			decoded.EventID == event.EventID &&
			carrier.Get("event_type") == "review.submitted" &&
			carrier.Get("correlation_id") == "corr-1" &&
			carrier.Get("traceparent") != ""
	})).Return(nil)

	require.NoError(t, p.Publish(ctx, "tiendas.review.submitted", event))
	w.AssertExpectations(t)
}

func TestProducer_Publish_WriterError(t *testing.T) {
	w := &mockWriter{}
	p := NewProducerWithWriter(w, nil, testLogger())
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

	event, err := NewEvent("tienda.viewed", Aggregate{ID: "b2"}, "tiendas-web", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "tiendas.tienda.viewed", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tiendas.tienda.viewed")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_Close(t *testing.T) {
	w := &mockWriter{}
	w.On("Close").Return(nil)
	p := NewProducerWithWriter(w, nil, testLogger())

	require.NoError(t, p.Close())
	w.AssertExpectations(t)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers")
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"k1:9092", "k2:9092"})
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.Async)
}
