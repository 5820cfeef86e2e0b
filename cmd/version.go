package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped into autostart records; override with
// -ldflags "-X github.com/scienceol/playawake/cmd.version=...".
var version = "0.1.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of playawake",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("playawake v%s\n", version)
	},
}
