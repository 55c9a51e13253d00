package relay

import "time"

// TimestampLayout is the ISO-8601 layout, millisecond precision in UTC, used
// for createdAt and updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Message is the payload of the message-added topic.
type Message struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	CreatedAt string   `json:"createdAt"`
	Author    string   `json:"author"`
	Channel   string   `json:"channel"`
	Important bool     `json:"important"`
	Tags      []string `json:"tags"`
}

// SystemStatus is the payload of the status-changed topic.
type SystemStatus struct {
	Online    bool    `json:"online"`
	Load      float64 `json:"load"`
	UpdatedAt string  `json:"updatedAt"`
}

// Settings is the payload of the settings-updated topic.
type Settings struct {
	Theme     string `json:"theme"`
	Lang      string `json:"lang"`
	UpdatedAt string `json:"updatedAt"`
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func (c Clock) stamp() string {
	if c == nil {
		return time.Now().UTC().Format(TimestampLayout)
	}
	return c().UTC().Format(TimestampLayout)
}
