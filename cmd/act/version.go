package main

import (
	"strings"

	"github.com/aretw0/act"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of act",
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd, "act version %s\n", strings.TrimSpace(act.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
