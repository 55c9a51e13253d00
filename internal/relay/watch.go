package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nfrund/relay/internal/pubsub"
)

// Watch subscribes to ch and forwards its events on the returned channel.
// The subscription is registered before Watch returns, so every event
// published afterwards is delivered in order. When ctx carries a session
// (see WithSession) the session owns the subscription; the channel closes when
// ctx is done, the operation is stopped or the session is closed.
func Watch[T any](ctx context.Context, ch *pubsub.Channel[T]) <-chan T {
	out := make(chan T)
	stream := ch.Subscribe()

	session, opID, owned := SessionFromContext(ctx)
	if owned {
		if err := session.Attach(opID, stream); err != nil {
			close(out)
			return out
		}
	}

	go func() {
		defer close(out)
		defer func() {
			stream.Unsubscribe()
			if owned {
				session.Detach(opID, stream)
			}
		}()

		for {
			event, err := stream.Next(ctx)
			if errors.Is(err, pubsub.ErrTypeMismatch) {
				slog.Warn("Dropping event with unexpected payload", "topic", ch.Name(), "error", err)
				continue
			}
			if err != nil {
				return
			}

			select {
			case out <- event:
			case <-stream.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
