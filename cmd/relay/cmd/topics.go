package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/relay/cmd/relay/internal/topics"
)

var topicsFormat string

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Inspect the event topics carried by the relay",
	Long: `The topics command lists and describes the topics events are published on,
and validates topic names.

Examples:
  relay topics list
  relay topics list --format json
  relay topics get message-added
  relay topics validate chat.message-sent`,
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all relay topics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := topics.Initialize()
		if err != nil {
			return err
		}
		if topicsFormat == "json" {
			return topics.DisplayTopicsJSON(cmd.OutOrStdout(), manager.List())
		}
		return topics.DisplayTopicsTable(cmd.OutOrStdout(), manager.List())
	},
}

var topicsGetCmd = &cobra.Command{
	Use:   "get <topic>",
	Short: "Show details of one topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := topics.Initialize()
		if err != nil {
			return err
		}
		topic, err := manager.Get(args[0])
		if err != nil {
			return fmt.Errorf("topic %q: %w", args[0], err)
		}
		return topics.DisplayTopicDetails(cmd.OutOrStdout(), topic, topicsFormat)
	},
}

var topicsValidateCmd = &cobra.Command{
	Use:   "validate <topic>",
	Short: "Validate a topic name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := topics.Initialize()
		if err != nil {
			return err
		}
		err = manager.ValidateTopicName(args[0])
		topics.DisplayValidationResult(cmd.OutOrStdout(), args[0], err)
		return err
	},
}

func init() {
	topicsCmd.PersistentFlags().StringVarP(&topicsFormat, "format", "f", "table", "output format: table or json")

	topicsCmd.AddCommand(topicsListCmd, topicsGetCmd, topicsValidateCmd)
	rootCmd.AddCommand(topicsCmd)
}
