package topicmgr

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

type entry struct {
	topic        Topic
	registeredAt time.Time
}

// Registry is the concurrency safe catalog behind Manager.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty catalog.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds topic under its name. Names are unique.
func (r *Registry) Register(topic Topic) error {
	if topic == nil {
		return fmt.Errorf("%w: nil topic", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := topic.Name()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.entries[name] = entry{topic: topic, registeredAt: time.Now()}
	return nil
}

// Get looks a topic up by name.
func (r *Registry) Get(name string) (Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.topic, ok
}

// RegisteredAt reports when name was registered.
func (r *Registry) RegisteredAt(name string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.registeredAt, ok
}

// List returns all topics ordered by name.
func (r *Registry) List() []Topic {
	r.mu.RLock()
	topics := make([]Topic, 0, len(r.entries))
	for _, e := range r.entries {
		topics = append(topics, e.topic)
	}
	r.mu.RUnlock()

	slices.SortFunc(topics, func(a, b Topic) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return topics
}

// Count returns the number of registered topics.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
