package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusConfig configures the watermill GoChannel behind the bridge.
type BusConfig struct {
	// OutputBuffer is the per-subscriber buffer of the GoChannel.
	OutputBuffer int64
	// Debug enables watermill's debug logging.
	Debug bool
}

// WatermillBridge implements the Publisher and Subscriber interfaces using watermill's GoChannel.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	tracer trace.Tracer
}

const (
	// Metadata keys used to transfer our Message structure fields through watermill's message.
	metaKeyUserID = "user_id"
	metaKeyTopic  = "topic"
)

// NewWatermillBridge initializes the in-memory bus. A nil tracer disables tracing.
func NewWatermillBridge(cfg BusConfig, tracer trace.Tracer) *WatermillBridge {
	logger := watermill.NewStdLogger(cfg.Debug, false)
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: cfg.OutputBuffer},
		logger,
	)

	var pub message.Publisher = goChannel
	if tracer != nil {
		pub = NewPublisherTracingMiddleware(goChannel, tracer)
	}

	return &WatermillBridge{
		pub:    pub,
		sub:    goChannel,
		tracer: tracer,
	}
}

// mapToWatermillMessage converts our pubsub.Message to a watermill message.
func mapToWatermillMessage(ctx context.Context, msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wmMsg.SetContext(ctx)

	wmMsg.Metadata.Set(metaKeyUserID, msg.UserID)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)
	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}

	return wmMsg
}

// mapToPubSubMessage converts a watermill message back to our Message.
func mapToPubSubMessage(wmMsg *message.Message) Message {
	userID := wmMsg.Metadata.Get(metaKeyUserID)
	topic := wmMsg.Metadata.Get(metaKeyTopic)

	metadata := make(map[string]string)
	for k, v := range wmMsg.Metadata {
		if k != metaKeyUserID && k != metaKeyTopic {
			metadata[k] = v
		}
	}

	return Message{
		Topic:    topic,
		UserID:   userID,
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	return wb.pub.Publish(msg.Topic, mapToWatermillMessage(ctx, msg))
}

// Subscribe implements the Subscriber interface. It returns once the
// subscription is active; messages are handled on a background goroutine.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	go func() {
		for wmMsg := range messages {
			if err := wb.process(wmMsg, handler); err != nil {
				slog.Error("Failed to handle bus message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
				// The in-memory bus has no redelivery worth waiting for.
				wmMsg.Nack()
				continue
			}
			wmMsg.Ack()
		}
		slog.Debug("Bus subscription loop ended", "topic", topic)
	}()

	return nil
}

// process runs handler for one message, inside a span when tracing is enabled.
func (wb *WatermillBridge) process(wmMsg *message.Message, handler Handler) error {
	msg := mapToPubSubMessage(wmMsg)
	ctx := wmMsg.Context()
	if wb.tracer == nil {
		return handler(ctx, msg)
	}

	spanCtx, span := wb.tracer.Start(ctx, fmt.Sprintf("pubsub.process.%s", msg.Topic),
		trace.WithAttributes(
			attribute.String("messaging.system", "watermill"),
			attribute.String("messaging.operation", "process"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("messaging.message_id", wmMsg.UUID),
			attribute.Int("messaging.message_payload_size_bytes", len(wmMsg.Payload)),
		),
	)
	defer span.End()

	if err := handler(spanCtx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Close shuts down the bus. Closing the GoChannel ends every subscription loop.
func (wb *WatermillBridge) Close() error {
	return wb.sub.Close()
}
