package relay

import (
	"strconv"
	"sync/atomic"
)

// Counter hands out message ids. The first id is 1; ids are never reused.
// One Counter is shared by the sendMessage command and the message generator.
type Counter struct {
	last atomic.Uint64
}

// NewCounter creates a counter whose first Next returns 1.
func NewCounter() *Counter {
	return &Counter{}
}

// Next allocates the next id.
func (c *Counter) Next() uint64 {
	return c.last.Add(1)
}

// NextID allocates the next id in its wire form.
func (c *Counter) NextID() string {
	return strconv.FormatUint(c.Next(), 10)
}

// Last returns the most recently issued id, 0 if none.
func (c *Counter) Last() uint64 {
	return c.last.Load()
}
