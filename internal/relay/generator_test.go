package relay

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	gen := NewGenerator("test", 5*time.Millisecond, func(ctx context.Context) error {
		ticks.Add(1)
		return nil
	})

	require.NoError(t, gen.Start(context.Background()))
	require.NoError(t, gen.Start(context.Background()), "second start is a no-op")
	assert.True(t, gen.Running())

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	gen.Stop()
	gen.Stop()
	assert.False(t, gen.Running())

	stopped := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load(), "no ticks after Stop")
}

func TestGenerator_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32
	gen := NewGenerator("test", 5*time.Millisecond, func(ctx context.Context) error {
		ticks.Add(1)
		return nil
	})
	require.NoError(t, gen.Start(ctx))
	require.Eventually(t, func() bool { return ticks.Load() >= 1 }, time.Second, time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	stopped := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load())
	gen.Stop()
}

func TestGenerator_RejectsNonPositiveInterval(t *testing.T) {
	gen := NewGenerator("bad", 0, func(ctx context.Context) error { return nil })
	assert.Error(t, gen.Start(context.Background()))
	assert.False(t, gen.Running())
}

func TestGenerator_SurvivesFailingTicks(t *testing.T) {
	var ticks atomic.Int32
	gen := NewGenerator("flaky", 5*time.Millisecond, func(ctx context.Context) error {
		switch ticks.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("tick failed")
		}
		return nil
	})

	require.NoError(t, gen.Start(context.Background()))
	defer gen.Stop()

	require.Eventually(t, func() bool { return ticks.Load() >= 4 }, time.Second, time.Millisecond,
		"the generator keeps ticking after an error and a panic")
}

func TestGenerators_Independent(t *testing.T) {
	channels := newTestChannels(t)
	gens := NewGenerators(channels, NewCounter(), nil, newLockedRand(7), GeneratorsConfig{
		MessageInterval:  5 * time.Millisecond,
		StatusInterval:   5 * time.Millisecond,
		SettingsInterval: 5 * time.Millisecond,
	})

	messages := channels.MessageAdded.Subscribe()
	defer messages.Unsubscribe()
	settings := channels.SettingsUpdated.Subscribe()
	defer settings.Unsubscribe()
	status := channels.StatusChanged.Subscribe()
	defer status.Unsubscribe()

	require.NoError(t, gens.Start(context.Background()))
	defer gens.Stop()

	gens.Status.Stop()
	assert.False(t, gens.Status.Running())

	// Drop whatever the status generator emitted before it was stopped.
	for status.Pending() > 0 {
		next(t, status)
	}

	for i := 0; i < 3; i++ {
		msg := next(t, messages)
		assert.Equal(t, "server", msg.Author)
		st := next(t, settings)
		assert.Contains(t, []string{"dark", "light"}, st.Theme)
	}
	assert.True(t, gens.Message.Running())
	assert.True(t, gens.Settings.Running())
	assert.Equal(t, 0, status.Pending(), "a stopped generator publishes nothing")
}
