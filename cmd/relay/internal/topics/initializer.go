package topics

import (
	"fmt"

	"github.com/nfrund/relay/internal/pubsub"
	"github.com/nfrund/relay/internal/relay"
	"github.com/nfrund/relay/internal/topicmgr"
)

// Initialize builds the relay channels against a fresh manager so that every
// topic the server carries is registered, without starting anything.
func Initialize() (*topicmgr.Manager, error) {
	manager := topicmgr.NewManager()
	if _, err := relay.NewChannels(pubsub.NewRegistry(), pubsub.ChannelOptions{Topics: manager}); err != nil {
		return nil, fmt.Errorf("register relay topics: %w", err)
	}
	return manager, nil
}
