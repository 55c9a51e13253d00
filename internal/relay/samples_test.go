package relay

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTick(t *testing.T) {
	channels := newTestChannels(t)
	counter := NewCounter()
	counter.Next()

	stream := channels.MessageAdded.Subscribe()
	defer stream.Unsubscribe()

	require.NoError(t, MessageTick(channels, counter, fixedClock)(context.Background()))

	msg := next(t, stream)
	assert.Equal(t, "2", msg.ID)
	assert.True(t, strings.Contains(msg.Text, "2"))
	assert.Equal(t, "server", msg.Author)
	assert.Equal(t, "news", msg.Channel)
	assert.Equal(t, []string{"auto"}, msg.Tags)
	assert.False(t, msg.Important)
	assert.Equal(t, "2024-05-01T12:30:00.000Z", msg.CreatedAt)
}

func TestStatusTick_LoadRange(t *testing.T) {
	channels := newTestChannels(t)
	stream := channels.StatusChanged.Subscribe()
	defer stream.Unsubscribe()

	tick := StatusTick(channels, newLockedRand(1), fixedClock)
	for i := 0; i < 200; i++ {
		require.NoError(t, tick(context.Background()))
		st := next(t, stream)
		assert.True(t, st.Online)
		assert.GreaterOrEqual(t, st.Load, 0.1)
		assert.LessOrEqual(t, st.Load, 1.6)
		assert.InDelta(t, st.Load, float64(int(st.Load*100+0.5))/100, 1e-9, "two decimals")
	}
}

type stubRand struct {
	f float64
	n int
}

func (s stubRand) Float64() float64 { return s.f }
func (s stubRand) IntN(int) int     { return s.n }

func TestSampleLoad_Bounds(t *testing.T) {
	assert.Equal(t, 0.1, sampleLoad(stubRand{f: 0}))
	assert.Equal(t, 1.6, sampleLoad(stubRand{f: 0.9999999}))
	assert.Equal(t, 0.85, sampleLoad(stubRand{f: 0.5}))
}

func TestSettingsTick(t *testing.T) {
	channels := newTestChannels(t)
	stream := channels.SettingsUpdated.Subscribe()
	defer stream.Unsubscribe()

	require.NoError(t, SettingsTick(channels, stubRand{n: 0}, fixedClock)(context.Background()))
	require.NoError(t, SettingsTick(channels, stubRand{n: 1}, fixedClock)(context.Background()))

	first, second := next(t, stream), next(t, stream)
	assert.Equal(t, "dark", first.Theme)
	assert.Equal(t, "ja", first.Lang)
	assert.Equal(t, "light", second.Theme)
	assert.Equal(t, "en", second.Lang)
}
