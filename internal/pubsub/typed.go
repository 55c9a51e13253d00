package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/nfrund/relay/internal/topicmgr"
)

// ErrTypeMismatch is returned by Stream.Next when a value of the wrong type was
// published on the stream's topic through the untyped registry.
var ErrTypeMismatch = errors.New("pubsub: payload type mismatch")

// ChannelOptions configures a typed channel.
type ChannelOptions struct {
	// Topics receives the channel's topic definition. Nil skips registration.
	Topics *topicmgr.Manager
	// Mirror, when set, receives a JSON copy of every published event.
	Mirror Publisher
}

// Channel[T] fixes the payload type for one topic of the registry.
// The compiler ensures only T values are published on it.
type Channel[T any] struct {
	topic  topicmgr.Topic
	reg    *Registry
	mirror Publisher
}

// NewChannel creates a typed channel over reg for the named topic.
// It reflects on T to document the payload fields in the topic definition.
func NewChannel[T any](reg *Registry, name, description string, opts ChannelOptions) (*Channel[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	fields := make([]string, 0)
	typeName := ""

	if t != nil {
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		typeName = t.Name()
		if t.Kind() == reflect.Struct {
			for i := 0; i < t.NumField(); i++ {
				jsonTag := t.Field(i).Tag.Get("json")
				if jsonTag == "" || jsonTag == "-" {
					continue
				}
				fieldName, _, _ := strings.Cut(jsonTag, ",")
				fields = append(fields, fieldName)
			}
		}
	}

	topic := topicmgr.Define(topicmgr.TopicConfig{
		Name:        name,
		Description: description,
		Metadata: map[string]interface{}{
			"payload_fields": fields,
			"type_name":      typeName,
			"is_typed":       true,
		},
	})

	if opts.Topics != nil {
		if err := opts.Topics.Register(topic); err != nil {
			return nil, fmt.Errorf("register topic %q: %w", name, err)
		}
	}

	return &Channel[T]{
		topic:  topic,
		reg:    reg,
		mirror: opts.Mirror,
	}, nil
}

// Name returns the topic name.
func (c *Channel[T]) Name() string {
	return c.topic.Name()
}

// Topic returns the channel's topic definition.
func (c *Channel[T]) Topic() topicmgr.Topic {
	return c.topic
}

// Publish fans payload out to every current subscriber and returns how many
// received it. Mirroring failures are logged and never affect local delivery.
func (c *Channel[T]) Publish(ctx context.Context, payload T) int {
	delivered := c.reg.Publish(c.topic.Name(), payload)

	if c.mirror != nil {
		if err := Publish(ctx, c.mirror, c, payload); err != nil {
			slog.Error("Failed to mirror event", "topic", c.topic.Name(), "error", err)
		}
	}
	return delivered
}

// Subscribe registers a new subscriber. Only events published after this call
// are delivered to the returned stream.
func (c *Channel[T]) Subscribe() *Stream[T] {
	return &Stream[T]{sub: c.reg.Subscribe(c.topic.Name())}
}

// Stream[T] is the consumer side of one subscription. It is lazy, unbounded,
// and cannot be restarted once unsubscribed.
type Stream[T any] struct {
	sub *Subscription
}

// Next blocks until the next event arrives. It returns ErrClosed once the
// stream has been unsubscribed, or ctx.Err() when ctx is done first.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	v, err := s.sub.Queue().Pop(ctx)
	if err != nil {
		return zero, err
	}
	payload, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: topic %s got %T", ErrTypeMismatch, s.sub.Topic(), v)
	}
	return payload, nil
}

// Unsubscribe stops delivery and releases the queue. Idempotent.
func (s *Stream[T]) Unsubscribe() {
	s.sub.Unsubscribe()
}

// Pending returns the number of queued, undelivered events.
func (s *Stream[T]) Pending() int {
	return s.sub.Queue().Len()
}

// Done is closed once the stream has been unsubscribed.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.sub.Queue().Done()
}

// Publish sends a JSON encoded copy of payload to an external bus publisher
// under the mirrored topic name of channel.
func Publish[T any](ctx context.Context, p Publisher, channel *Channel[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, Message{
		Topic:   MirrorTopic(channel.Name()),
		UserID:  "system",
		Payload: data,
	})
}

// MirrorTopic maps a registry topic onto its name on the external bus.
func MirrorTopic(topic string) string {
	return "relay." + topic
}
