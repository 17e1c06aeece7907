// Package commands holds the respd CLI, grounded on packetd-packetd's
// cmd package: one cobra.Command per file, a shared --config persistent
// flag, and each subcommand loading config.Load(configPath) for itself
// rather than through a global.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "respd",
	Short: "A RESP protocol server core",
	Long: `respd is a resumable RESP (REdis Serialization Protocol) request
parser, dispatcher and connection manager, with a small badger-backed
demo command set wired on top to exercise it end to end.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults + RESPD_ env vars apply regardless)")
}

// Execute runs the root command, the sole entry point main() calls.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "respd: %v\n", err)
		os.Exit(1)
	}
}
