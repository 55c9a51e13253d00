package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_WithTracing(t *testing.T) {
	ctx := context.Background()
	config := TracingConfig{
		Enabled:     true,
		ServiceName: "test-service",
		ZipkinURL:   "http://localhost:9411/api/v2/spans",
	}
	tracer, cleanup, err := SetupOTel(ctx, config)
	require.NoError(t, err)
	defer cleanup()

	bridge := NewWatermillBridge(BusConfig{OutputBuffer: 16}, tracer)
	defer bridge.Close()

	var (
		mu       sync.Mutex
		received []Message
	)
	done := make(chan struct{}, 1)
	err = bridge.Subscribe(ctx, "relay.test", func(ctx context.Context, msg Message) error {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:    "relay.test",
		UserID:   "user123",
		Payload:  []byte(`{"text":"hello world"}`),
		Metadata: map[string]string{"request_id": "req-123"},
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus message")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "relay.test", received[0].Topic)
	assert.Equal(t, "user123", received[0].UserID)
	assert.JSONEq(t, `{"text":"hello world"}`, string(received[0].Payload))
	assert.Equal(t, "req-123", received[0].Metadata["request_id"])
}

func TestSetupOTel(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled tracing", func(t *testing.T) {
		tracer, cleanup, err := SetupOTel(ctx, TracingConfig{Enabled: false})
		require.NoError(t, err)
		require.NotNil(t, tracer)
		require.NotNil(t, cleanup)

		_, span := tracer.Start(ctx, "test")
		span.End()
		cleanup()
	})

	t.Run("enabled tracing with unreachable collector", func(t *testing.T) {
		config := TracingConfig{
			Enabled:     true,
			ServiceName: "test-service",
			ZipkinURL:   "http://invalid-url:9411/api/v2/spans",
		}
		tracer, cleanup, err := SetupOTel(ctx, config)
		require.NoError(t, err)
		require.NotNil(t, tracer)
		require.NotNil(t, cleanup)
		cleanup()
	})
}
