package relay

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nfrund/relay/internal/pubsub"
)

var fixedTime = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func newTestChannels(t *testing.T) *Channels {
	t.Helper()
	channels, err := NewChannels(pubsub.NewRegistry(), pubsub.ChannelOptions{})
	require.NoError(t, err)
	return channels
}

// lockedRand makes a seeded *rand.Rand safe to share between generators.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed uint64) *lockedRand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed+1))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// next reads one event from stream or fails the test after a timeout.
func next[T any](t *testing.T, stream *pubsub.Stream[T]) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := stream.Next(ctx)
	require.NoError(t, err)
	return v
}

var noChannelOptions = pubsub.ChannelOptions{}

func newRegistry() *pubsub.Registry { return pubsub.NewRegistry() }
