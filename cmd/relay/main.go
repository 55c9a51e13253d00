package main

import "github.com/nfrund/relay/cmd/relay/cmd"

// version can be set at build time.
// Example: go build -ldflags "-X 'main.version=1.2.0'"
var version string

func main() {
	if version != "" {
		cmd.SetVersion(version)
	}
	cmd.Execute()
}
