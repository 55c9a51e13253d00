package relay

import (
	"context"
	"log/slog"

	"github.com/nfrund/relay/internal/pubsub"
)

// StartAudit logs every event mirrored on the bus at debug level.
func StartAudit(ctx context.Context, sub pubsub.Subscriber, channels *Channels) error {
	for _, topic := range channels.Topics() {
		busTopic := pubsub.MirrorTopic(topic)
		err := sub.Subscribe(ctx, busTopic, func(ctx context.Context, msg pubsub.Message) error {
			slog.DebugContext(ctx, "Event mirrored", "topic", msg.Topic, "userID", msg.UserID, "payload", string(msg.Payload))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
