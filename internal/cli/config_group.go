package cli

import "github.com/spf13/cobra"

// configCmd groups config file commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize the config file",
}

func init() {
	rootCmd.AddCommand(configCmd)
}
