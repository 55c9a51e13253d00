package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of relay",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "relay v%s\n", version)
	},
}

// SetVersion overrides the reported version (called from main with ldflags).
func SetVersion(ver string) {
	version = ver
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
