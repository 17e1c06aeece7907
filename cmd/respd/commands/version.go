package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables injected via -ldflags, following the teacher
// pack's convention (marmos91-dittofs/cmd/dittofs/main.go) of
// dev/none/unknown defaults for unlinked builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print respd's version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("respd %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
