package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_RoundTrip(t *testing.T) {
	channels := newTestChannels(t)
	cmds := NewCommands(channels, NewCounter(), fixedClock, CommandsConfig{})

	stream := channels.MessageAdded.Subscribe()
	defer stream.Unsubscribe()

	msg, err := cmds.SendMessage(context.Background(), SendMessageInput{Text: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "1", msg.ID)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, "user", msg.Author)
	assert.Equal(t, "general", msg.Channel)
	assert.False(t, msg.Important)
	assert.NotNil(t, msg.Tags)
	assert.Empty(t, msg.Tags)
	assert.Equal(t, "2024-05-01T12:30:00.000Z", msg.CreatedAt)

	_, err = time.Parse(time.RFC3339, msg.CreatedAt)
	require.NoError(t, err)

	assert.Equal(t, msg, next(t, stream), "subscribers receive the returned payload")
}

func TestSendMessage_FreshIDs(t *testing.T) {
	cmds := NewCommands(newTestChannels(t), NewCounter(), nil, CommandsConfig{})

	first, err := cmds.SendMessage(context.Background(), SendMessageInput{Text: "a"})
	require.NoError(t, err)
	second, err := cmds.SendMessage(context.Background(), SendMessageInput{Text: "b"})
	require.NoError(t, err)

	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2", second.ID)
}

func TestSendMessage_Validation(t *testing.T) {
	channels := newTestChannels(t)
	counter := NewCounter()
	cmds := NewCommands(channels, counter, nil, CommandsConfig{})

	stream := channels.MessageAdded.Subscribe()
	defer stream.Unsubscribe()

	_, err := cmds.SendMessage(context.Background(), SendMessageInput{Text: ""})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, uint64(0), counter.Last(), "a rejected command allocates no id")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "nothing is published")
}

func TestSendMessage_IgnoresOptionalArgumentsByDefault(t *testing.T) {
	cmds := NewCommands(newTestChannels(t), NewCounter(), nil, CommandsConfig{})

	author, channel, important := "alice", "random", true
	msg, err := cmds.SendMessage(context.Background(), SendMessageInput{
		Text:      "hello",
		Author:    &author,
		Channel:   &channel,
		Important: &important,
		Tags:      []string{"x"},
	})
	require.NoError(t, err)

	assert.Equal(t, "user", msg.Author)
	assert.Equal(t, "general", msg.Channel)
	assert.False(t, msg.Important)
	assert.Empty(t, msg.Tags)
}

func TestSendMessage_PassThrough(t *testing.T) {
	cmds := NewCommands(newTestChannels(t), NewCounter(), nil, CommandsConfig{PassThrough: true})

	author, important := "alice", true
	msg, err := cmds.SendMessage(context.Background(), SendMessageInput{
		Text:      "hello",
		Author:    &author,
		Important: &important,
		Tags:      []string{"x", "y"},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", msg.Author)
	assert.Equal(t, "general", msg.Channel, "omitted fields keep their defaults")
	assert.True(t, msg.Important)
	assert.Equal(t, []string{"x", "y"}, msg.Tags)
}
