// Command dittolist serves the DittoList directory listing API and offers a
// one-shot listing client for the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configPath is the --config flag shared by every subcommand.
var configPath string

var rootCmd = &cobra.Command{
	Use:           "dittolist",
	Short:         "Fast paginated directory listings over HTTP",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/dittolist/config.yaml)")

	rootCmd.AddCommand(serveCmd, lsCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
