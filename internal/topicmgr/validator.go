package topicmgr

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator provides validation for topic definitions
type Validator struct {
	// namePattern defines valid topic name patterns
	namePattern *regexp.Regexp
}

// NewValidator creates a new topic validator
func NewValidator() *Validator {
	// Lowercase kebab-case segments, optionally dot separated.
	// Examples: message-added, status-changed, relay.message-added
	namePattern := regexp.MustCompile(`^[a-z][a-z0-9-]*(\.[a-z][a-z0-9-]*)*$`)

	return &Validator{
		namePattern: namePattern,
	}
}

// ValidateDefinition validates a topic definition
func (v *Validator) ValidateDefinition(topic Topic) error {
	if topic == nil {
		return fmt.Errorf("topic cannot be nil")
	}

	if err := v.ValidateName(topic.Name()); err != nil {
		return fmt.Errorf("invalid topic name: %w", err)
	}

	if strings.TrimSpace(topic.Description()) == "" {
		return fmt.Errorf("topic description cannot be empty")
	}

	return nil
}

// ValidateName checks a topic name against the naming rules.
func (v *Validator) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("topic name cannot be empty")
	}

	if len(name) > 100 {
		return fmt.Errorf("topic name too long (max 100 characters): %d", len(name))
	}

	if !v.namePattern.MatchString(name) {
		return fmt.Errorf("topic name %q must be lowercase kebab-case segments separated by dots", name)
	}

	if strings.HasSuffix(name, "-") || strings.Contains(name, "--") {
		return fmt.Errorf("topic name %q has an empty word", name)
	}

	return nil
}
