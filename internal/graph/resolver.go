package graph

import (
	"context"

	"github.com/nfrund/relay/internal/relay"
)

// Resolver is the root resolver for queries, mutations and subscriptions.
type Resolver struct {
	commands *relay.Commands
	channels *relay.Channels
	state    *relay.State
}

type messagesArgs struct {
	Channel *string
}

// Messages resolves Query.messages from the recent history.
func (r *Resolver) Messages(args messagesArgs) []*relay.Message {
	channel := ""
	if args.Channel != nil {
		channel = *args.Channel
	}
	msgs := r.state.Messages(channel)
	out := make([]*relay.Message, len(msgs))
	for i := range msgs {
		out[i] = &msgs[i]
	}
	return out
}

// SystemStatus resolves Query.systemStatus.
func (r *Resolver) SystemStatus() *relay.SystemStatus {
	st := r.state.Status()
	return &st
}

// Settings resolves Query.settings.
func (r *Resolver) Settings() *relay.Settings {
	st := r.state.Settings()
	return &st
}

// sendMessageArgs holds values, not pointers: the executor fills omitted
// arguments from their schema defaults.
type sendMessageArgs struct {
	Text      string
	Author    string
	Channel   string
	Important bool
	Tags      []string
}

// SendMessage resolves Mutation.sendMessage.
func (r *Resolver) SendMessage(ctx context.Context, args sendMessageArgs) (*relay.Message, error) {
	in := relay.SendMessageInput{
		Text:      args.Text,
		Author:    &args.Author,
		Channel:   &args.Channel,
		Important: &args.Important,
		Tags:      args.Tags,
	}

	msg, err := r.commands.SendMessage(ctx, in)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessageAdded resolves Subscription.messageAdded.
func (r *Resolver) MessageAdded(ctx context.Context) <-chan *relay.Message {
	return pointers(ctx, relay.Watch(ctx, r.channels.MessageAdded))
}

// SystemStatusChanged resolves Subscription.systemStatusChanged.
func (r *Resolver) SystemStatusChanged(ctx context.Context) <-chan *relay.SystemStatus {
	return pointers(ctx, relay.Watch(ctx, r.channels.StatusChanged))
}

// SettingsUpdated resolves Subscription.settingsUpdated.
func (r *Resolver) SettingsUpdated(ctx context.Context) <-chan *relay.Settings {
	return pointers(ctx, relay.Watch(ctx, r.channels.SettingsUpdated))
}

// pointers adapts a value channel to the pointer channel the executor resolves
// object fields from. It closes when in closes or ctx is done.
func pointers[T any](ctx context.Context, in <-chan T) <-chan *T {
	out := make(chan *T)
	go func() {
		defer close(out)
		for v := range in {
			select {
			case out <- &v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
