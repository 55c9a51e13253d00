package relay

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSub struct {
	calls atomic.Int32
}

func (c *countingSub) Unsubscribe() { c.calls.Add(1) }

func TestSession_CloseReleasesEverySubscriptionOnce(t *testing.T) {
	s := NewSession()
	require.NotEmpty(t, s.ID())
	assert.Equal(t, SessionOpen, s.State())

	a, b, c := &countingSub{}, &countingSub{}, &countingSub{}
	require.NoError(t, s.Attach("1", a))
	require.NoError(t, s.Attach("1", b))
	require.NoError(t, s.Attach("2", c))
	assert.Equal(t, 3, s.Subscriptions())

	s.Close()
	s.Close()

	assert.Equal(t, SessionClosed, s.State())
	assert.Equal(t, "closed", s.State().String())
	assert.Equal(t, 0, s.Subscriptions())
	for _, sub := range []*countingSub{a, b, c} {
		assert.Equal(t, int32(1), sub.calls.Load())
	}
}

func TestSession_AttachAfterClose(t *testing.T) {
	s := NewSession()
	s.Close()

	sub := &countingSub{}
	assert.ErrorIs(t, s.Attach("1", sub), ErrSessionClosed)
	assert.Equal(t, int32(1), sub.calls.Load(), "a late subscription is released immediately")
}

func TestSession_StopOneOperation(t *testing.T) {
	s := NewSession()
	a, b := &countingSub{}, &countingSub{}
	require.NoError(t, s.Attach("1", a))
	require.NoError(t, s.Attach("2", b))

	assert.Equal(t, 1, s.Stop("1"))
	assert.Equal(t, 0, s.Stop("1"))
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(0), b.calls.Load())
	assert.Equal(t, SessionOpen, s.State())
}

func TestSession_Detach(t *testing.T) {
	s := NewSession()
	a := &countingSub{}
	require.NoError(t, s.Attach("1", a))

	s.Detach("1", a)
	s.Close()
	assert.Equal(t, int32(0), a.calls.Load())
}

func TestSession_TeardownStopsDelivery(t *testing.T) {
	channels := newTestChannels(t)
	cmds := NewCommands(channels, NewCounter(), nil, CommandsConfig{})
	session := NewSession()

	ctx := WithSession(context.Background(), session, "op-1")
	events := Watch(ctx, channels.MessageAdded)
	assert.Equal(t, 1, session.Subscriptions())

	_, err := cmds.SendMessage(context.Background(), SendMessageInput{Text: "before"})
	require.NoError(t, err)
	select {
	case msg := <-events:
		assert.Equal(t, "before", msg.Text)
	case <-time.After(time.Second):
		t.Fatal("no event before close")
	}

	session.Close()
	assert.Equal(t, 0, session.Subscriptions())

	for i := 0; i < 5; i++ {
		_, err := cmds.SendMessage(context.Background(), SendMessageInput{Text: "after"})
		require.NoError(t, err)
	}

	select {
	case msg, ok := <-events:
		assert.False(t, ok, "received %+v after close", msg)
	case <-time.After(time.Second):
		t.Fatal("event channel not closed after session close")
	}
}

func TestSessionFromContext(t *testing.T) {
	_, _, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	s := NewSession()
	got, opID, ok := SessionFromContext(WithSession(context.Background(), s, "42"))
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, "42", opID)
}
