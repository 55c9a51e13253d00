package relay

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCounter_StartsAtOne(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, uint64(0), c.Last())
	assert.Equal(t, "1", c.NextID())
	assert.Equal(t, uint64(2), c.Next())
	assert.Equal(t, uint64(2), c.Last())
}

func TestCounter_ConcurrentUnique(t *testing.T) {
	c := NewCounter()
	const workers, perWorker = 8, 250

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := c.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, uint64(workers*perWorker), c.Last())
}

// Ids issued by sendMessage and the message generator, in any interleaving,
// are unique and strictly increasing in issuance order.
func TestCounter_SharedByCommandsAndGenerator(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		channels, err := NewChannels(newRegistry(), noChannelOptions)
		require.NoError(rt, err)
		counter := NewCounter()
		cmds := NewCommands(channels, counter, nil, CommandsConfig{})
		tick := MessageTick(channels, counter, nil)

		stream := channels.MessageAdded.Subscribe()
		defer stream.Unsubscribe()

		ops := rapid.SliceOfN(rapid.Bool(), 1, 40).Draw(rt, "ops")
		for _, fromCommand := range ops {
			if fromCommand {
				_, err := cmds.SendMessage(context.Background(), SendMessageInput{Text: "cmd"})
				require.NoError(rt, err)
			} else {
				require.NoError(rt, tick(context.Background()))
			}
		}

		var last uint64
		for range ops {
			msg, err := stream.Next(context.Background())
			require.NoError(rt, err)
			id, err := strconv.ParseUint(msg.ID, 10, 64)
			require.NoError(rt, err)
			if id <= last {
				rt.Fatalf("id %d issued after %d", id, last)
			}
			last = id
		}
		assert.Equal(rt, uint64(len(ops)), last)
	})
}
