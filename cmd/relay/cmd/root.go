package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// v collects flag values for the config package; environment variables are
// read when the config is built.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Real-time GraphQL publish/subscribe relay",
	Long: `relay serves GraphQL queries, mutations and subscriptions over a single
websocket endpoint and fans events out to every connected subscriber.

Available commands:
  serve     Run the relay server
  topics    Inspect the event topics carried by the relay
  version   Print the version

Use "relay [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
