package topics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/nfrund/relay/internal/topicmgr"
)

// TopicDisplay represents a topic for display purposes
type TopicDisplay struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Example     string                 `json:"example,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func toDisplay(topic topicmgr.Topic) TopicDisplay {
	return TopicDisplay{
		Name:        topic.Name(),
		Description: topic.Description(),
		Example:     topic.Example(),
		Metadata:    topic.Metadata(),
	}
}

// DisplayTopicsTable writes topics as an aligned table.
func DisplayTopicsTable(w io.Writer, topics []topicmgr.Topic) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tPAYLOAD\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t-------\t-----------")

	if len(topics) == 0 {
		fmt.Fprintln(tw, "No topics found")
	}
	for _, topic := range topics {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			topic.Name(),
			payloadType(topic),
			truncateString(topic.Description(), 50))
	}
	return tw.Flush()
}

// DisplayTopicsJSON writes topics and their count as indented JSON.
func DisplayTopicsJSON(w io.Writer, topics []topicmgr.Topic) error {
	displays := make([]TopicDisplay, len(topics))
	for i, topic := range topics {
		displays[i] = toDisplay(topic)
	}

	output := struct {
		Topics []TopicDisplay `json:"topics"`
		Count  int            `json:"count"`
	}{
		Topics: displays,
		Count:  len(displays),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// DisplayTopicDetails writes everything known about one topic.
func DisplayTopicDetails(w io.Writer, topic topicmgr.Topic, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(toDisplay(topic))
	}

	fmt.Fprintf(w, "Name:        %s\n", topic.Name())
	fmt.Fprintf(w, "Description: %s\n", topic.Description())
	if topic.Example() != "" {
		fmt.Fprintf(w, "Example:     %s\n", topic.Example())
	}

	metadata := topic.Metadata()
	if len(metadata) > 0 {
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(w, "Metadata:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %v\n", k, metadata[k])
		}
	}
	return nil
}

// DisplayValidationResult reports whether a topic name is valid.
func DisplayValidationResult(w io.Writer, name string, err error) {
	if err != nil {
		fmt.Fprintf(w, "❌ Topic name validation failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "✅ Topic '%s' is valid\n", name)
}

func payloadType(topic topicmgr.Topic) string {
	if name, ok := topic.Metadata()["type_name"].(string); ok && name != "" {
		return name
	}
	return "-"
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
