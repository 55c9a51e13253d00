package topicmgr

import "maps"

// Topic describes a named logical event stream.
type Topic interface {
	Name() string
	Description() string
	// Example is a sample payload, empty when none was given.
	Example() string
	// Metadata holds extra facts such as the payload fields of a typed channel.
	Metadata() map[string]interface{}
}

// TopicConfig is the input of Define.
type TopicConfig struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Example     string                 `json:"example"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// Definition is the immutable Topic produced by Define.
type Definition struct {
	cfg TopicConfig
}

var _ Topic = (*Definition)(nil)

// Define creates a topic definition. The metadata map is copied.
func Define(cfg TopicConfig) Topic {
	cfg.Metadata = maps.Clone(cfg.Metadata)
	return &Definition{cfg: cfg}
}

func (d *Definition) Name() string        { return d.cfg.Name }
func (d *Definition) Description() string { return d.cfg.Description }
func (d *Definition) Example() string     { return d.cfg.Example }

// Metadata returns a copy of the metadata map.
func (d *Definition) Metadata() map[string]interface{} {
	if d.cfg.Metadata == nil {
		return map[string]interface{}{}
	}
	return maps.Clone(d.cfg.Metadata)
}

func (d *Definition) String() string { return d.cfg.Name }
