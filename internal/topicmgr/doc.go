// Package topicmgr keeps the catalog of topic definitions known to the relay.
//
// Every typed event channel registers a definition here when it is created, so
// the set of topics, their descriptions and their payload fields can be listed
// at runtime (for example by the `relay topics` command) without grepping for
// magic strings.
//
// Usage:
//
//	var MessageAdded = topicmgr.Define(topicmgr.TopicConfig{
//		Name:        "message-added",
//		Description: "A chat message was sent",
//		Example:     `{"id":"1","text":"hi"}`,
//	})
//
//	manager := topicmgr.NewManager()
//	if err := manager.Register(MessageAdded); err != nil {
//		log.Fatal(err)
//	}
package topicmgr
