package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Defaults(t *testing.T) {
	s := NewState(0, fixedClock)

	assert.True(t, s.Status().Online)
	assert.Equal(t, "light", s.Settings().Theme)
	assert.Equal(t, "en", s.Settings().Lang)
	assert.Equal(t, "2024-05-01T12:30:00.000Z", s.Settings().UpdatedAt)
	assert.Empty(t, s.Messages(""))
}

func TestState_TracksChannels(t *testing.T) {
	channels := newTestChannels(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewState(2, fixedClock)
	s.Start(ctx, channels)

	cmds := NewCommands(channels, NewCounter(), fixedClock, CommandsConfig{})
	for _, text := range []string{"one", "two", "three"} {
		_, err := cmds.SendMessage(ctx, SendMessageInput{Text: text})
		require.NoError(t, err)
	}
	channels.StatusChanged.Publish(ctx, SystemStatus{Online: true, Load: 1.25})
	channels.SettingsUpdated.Publish(ctx, Settings{Theme: "dark", Lang: "ja"})

	require.Eventually(t, func() bool {
		msgs := s.Messages("")
		return len(msgs) == 2 && msgs[1].Text == "three" &&
			s.Status().Load == 1.25 && s.Settings().Theme == "dark"
	}, time.Second, time.Millisecond)

	msgs := s.Messages("")
	assert.Equal(t, "two", msgs[0].Text, "oldest messages are evicted first")
	assert.Len(t, s.Messages("general"), 2)
	assert.Empty(t, s.Messages("news"))
}
