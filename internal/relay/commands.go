package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// Default field values of sendMessage.
const (
	DefaultAuthor  = "user"
	DefaultChannel = "general"
)

// SendMessageInput carries the arguments of the sendMessage command.
// Optional fields are nil when the caller omitted them.
type SendMessageInput struct {
	Text      string `validate:"required"`
	Author    *string
	Channel   *string
	Important *bool
	Tags      []string
}

// CommandsConfig tunes command behavior.
type CommandsConfig struct {
	// PassThrough makes sendMessage honor caller supplied author, channel,
	// important and tags. When false those arguments are ignored and the
	// defaults are always used.
	PassThrough bool
}

// Commands executes client issued commands that produce events.
type Commands struct {
	channels *Channels
	counter  *Counter
	clock    Clock
	validate *validator.Validate
	cfg      CommandsConfig
}

// NewCommands creates the command handlers. A nil clock uses time.Now.
func NewCommands(channels *Channels, counter *Counter, clock Clock, cfg CommandsConfig) *Commands {
	return &Commands{
		channels: channels,
		counter:  counter,
		clock:    clock,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// SendMessage publishes a new Message on message-added and returns it once
// every current subscriber, the caller included, has it queued.
func (c *Commands) SendMessage(ctx context.Context, in SendMessageInput) (Message, error) {
	if err := c.validate.Struct(in); err != nil {
		return Message{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	msg := Message{
		Text:      in.Text,
		Author:    DefaultAuthor,
		Channel:   DefaultChannel,
		Important: false,
		Tags:      []string{},
	}
	if c.cfg.PassThrough {
		applyOverrides(&msg, in)
	}

	msg.ID = c.counter.NextID()
	msg.CreatedAt = c.clock.stamp()

	delivered := c.channels.MessageAdded.Publish(ctx, msg)
	slog.Debug("Message sent", "id", msg.ID, "author", msg.Author, "subscribers", delivered)

	return msg, nil
}

func applyOverrides(msg *Message, in SendMessageInput) {
	if in.Author != nil {
		msg.Author = *in.Author
	}
	if in.Channel != nil {
		msg.Channel = *in.Channel
	}
	if in.Important != nil {
		msg.Important = *in.Important
	}
	if in.Tags != nil {
		msg.Tags = append([]string{}, in.Tags...)
	}
}
