package relay

import (
	"github.com/nfrund/relay/internal/pubsub"
)

// Topic names carried by the relay.
const (
	TopicMessageAdded    = "message-added"
	TopicStatusChanged   = "status-changed"
	TopicSettingsUpdated = "settings-updated"
)

// Channels groups the typed channel of every relay topic.
type Channels struct {
	MessageAdded    *pubsub.Channel[Message]
	StatusChanged   *pubsub.Channel[SystemStatus]
	SettingsUpdated *pubsub.Channel[Settings]
}

// NewChannels creates the relay's channels on top of reg.
func NewChannels(reg *pubsub.Registry, opts pubsub.ChannelOptions) (*Channels, error) {
	messages, err := pubsub.NewChannel[Message](reg, TopicMessageAdded,
		"A chat message was sent by a client or by the sample generator", opts)
	if err != nil {
		return nil, err
	}

	status, err := pubsub.NewChannel[SystemStatus](reg, TopicStatusChanged,
		"The simulated system status changed", opts)
	if err != nil {
		return nil, err
	}

	settings, err := pubsub.NewChannel[Settings](reg, TopicSettingsUpdated,
		"The simulated user settings were updated", opts)
	if err != nil {
		return nil, err
	}

	return &Channels{
		MessageAdded:    messages,
		StatusChanged:   status,
		SettingsUpdated: settings,
	}, nil
}

// Topics returns the names of every relay topic.
func (c *Channels) Topics() []string {
	return []string{c.MessageAdded.Name(), c.StatusChanged.Name(), c.SettingsUpdated.Name()}
}
