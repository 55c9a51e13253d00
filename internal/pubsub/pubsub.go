package pubsub

import (
	"context"
)

// Message is the envelope carried on the external event bus that mirrors the
// in-process registry. It is intentionally simple to act as a wrapper for raw data.
type Message struct {
	// Topic identifies the bus topic (e.g., "relay.message-added").
	Topic string
	// UserID identifies who caused the event; generators and commands use "system".
	UserID string
	// Payload contains the JSON encoded event.
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received bus message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with the handler
	// in the background until ctx is canceled or the subscriber is closed.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
