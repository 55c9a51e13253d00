package topicmgr

import "fmt"

// Manager validates topic definitions before they enter the catalog.
type Manager struct {
	registry  *Registry
	validator *Validator
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		registry:  NewRegistry(),
		validator: NewValidator(),
	}
}

// Register validates topic and adds it to the catalog.
func (m *Manager) Register(topic Topic) error {
	if err := m.validator.ValidateDefinition(topic); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return m.registry.Register(topic)
}

// MustRegister registers a topic and panics on error.
func (m *Manager) MustRegister(topic Topic) {
	if err := m.Register(topic); err != nil {
		panic("failed to register topic: " + err.Error())
	}
}

// Get retrieves a topic by name.
func (m *Manager) Get(name string) (Topic, error) {
	topic, ok := m.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return topic, nil
}

// List returns all registered topics sorted by name.
func (m *Manager) List() []Topic {
	return m.registry.List()
}

// Count returns the number of registered topics.
func (m *Manager) Count() int {
	return m.registry.Count()
}

// ValidateTopicName checks a name without registering anything.
func (m *Manager) ValidateTopicName(name string) error {
	return m.validator.ValidateName(name)
}
