package relay

import (
	"context"
	"sync"
)

// DefaultHistoryLimit is how many recent messages State keeps.
const DefaultHistoryLimit = 100

// State is an in-memory snapshot of the latest events, served to queries. It
// feeds itself by subscribing to the relay channels like any other consumer.
type State struct {
	limit int

	mu       sync.RWMutex
	messages []Message
	status   SystemStatus
	settings Settings
}

// NewState creates a snapshot seeded with demo defaults.
func NewState(limit int, clock Clock) *State {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	now := clock.stamp()
	return &State{
		limit:    limit,
		messages: make([]Message, 0, limit),
		status:   SystemStatus{Online: true, Load: 0.1, UpdatedAt: now},
		settings: Settings{Theme: "light", Lang: "en", UpdatedAt: now},
	}
}

// Start subscribes to channels and keeps the snapshot current until ctx is done.
// The subscriptions exist when Start returns.
func (s *State) Start(ctx context.Context, channels *Channels) {
	messages := Watch(ctx, channels.MessageAdded)
	status := Watch(ctx, channels.StatusChanged)
	settings := Watch(ctx, channels.SettingsUpdated)

	go func() {
		for msg := range messages {
			s.addMessage(msg)
		}
	}()
	go func() {
		for st := range status {
			s.mu.Lock()
			s.status = st
			s.mu.Unlock()
		}
	}()
	go func() {
		for st := range settings {
			s.mu.Lock()
			s.settings = st
			s.mu.Unlock()
		}
	}()
}

func (s *State) addMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == s.limit {
		copy(s.messages, s.messages[1:])
		s.messages = s.messages[:len(s.messages)-1]
	}
	s.messages = append(s.messages, msg)
}

// Messages returns the recent messages, oldest first. A non-empty channel
// filters by channel name.
func (s *State) Messages(channel string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, 0, len(s.messages))
	for _, msg := range s.messages {
		if channel == "" || msg.Channel == channel {
			out = append(out, msg)
		}
	}
	return out
}

// Status returns the latest system status.
func (s *State) Status() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Settings returns the latest settings.
func (s *State) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}
