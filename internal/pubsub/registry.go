package pubsub

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Subscription is a live registration of one queue under one topic.
type Subscription struct {
	id    uint64
	topic string
	queue *Queue
	reg   *Registry
	once  sync.Once
}

// ID is unique per Subscribe call within a registry.
func (s *Subscription) ID() uint64 { return s.id }

// Topic returns the topic the subscription is registered under.
func (s *Subscription) Topic() string { return s.topic }

// Queue returns the subscriber queue owned by this subscription.
func (s *Subscription) Queue() *Queue { return s.queue }

// Unsubscribe removes the queue from the registry and closes it.
// Calling it more than once has no further effect.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.reg.remove(s)
		s.queue.Close()
	})
}

// Registry maps topic names to the ordered set of queues subscribed to them.
// It is the only shared mutable state on the publish path: subscribe and
// unsubscribe take the write lock, a fan-out holds the read lock for its whole
// duration, so no fan-out ever observes a half-updated subscriber list.
type Registry struct {
	mu     sync.RWMutex
	topics map[string][]*Subscription
	nextID atomic.Uint64
	logger *slog.Logger
}

// NewRegistry creates an empty topic registry.
func NewRegistry() *Registry {
	return &Registry{
		topics: make(map[string][]*Subscription),
		logger: slog.Default().With("component", "pubsub.registry"),
	}
}

// Subscribe registers a new queue under topic. The queue only receives events
// published after Subscribe returns.
func (r *Registry) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		id:    r.nextID.Add(1),
		topic: topic,
		queue: NewQueue(),
		reg:   r,
	}

	r.mu.Lock()
	r.topics[topic] = append(r.topics[topic], sub)
	count := len(r.topics[topic])
	r.mu.Unlock()

	r.logger.Debug("Subscriber registered", "topic", topic, "subscriptionID", sub.id, "total_subscribers", count)
	return sub
}

// Publish delivers payload to every queue currently registered under topic, in
// registration order, and returns how many queues accepted it. A topic without
// subscribers silently drops the event. A queue that rejects the event does not
// stop delivery to the others.
func (r *Registry) Publish(topic string, payload any) int {
	r.ensure(topic)

	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, sub := range r.topics[topic] {
		if err := sub.queue.Push(payload); err != nil {
			r.logger.Warn("Failed to enqueue event", "topic", topic, "subscriptionID", sub.id, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// SubscriberCount returns the number of active subscriptions on topic.
func (r *Registry) SubscriberCount(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics[topic])
}

// Topics returns every topic seen so far, sorted by name.
func (r *Registry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.topics))
	for name := range r.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ensure creates topic on first use.
func (r *Registry) ensure(topic string) {
	r.mu.RLock()
	_, ok := r.topics[topic]
	r.mu.RUnlock()
	if ok {
		return
	}

	r.mu.Lock()
	if _, ok := r.topics[topic]; !ok {
		r.topics[topic] = nil
	}
	r.mu.Unlock()
}

func (r *Registry) remove(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			// Copy instead of shifting in place so a slice header captured
			// elsewhere is never mutated.
			next := make([]*Subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			r.topics[sub.topic] = next
			r.logger.Debug("Subscriber unregistered", "topic", sub.topic, "subscriptionID", sub.id, "total_subscribers", len(next))
			return
		}
	}
}
