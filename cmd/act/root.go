package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "act",
	Short: "ACT is an avatar pose editor with undoable bone history",
	Long: `ACT maps a character rig onto a humanoid skeleton, records every settled
bone edit as an undoable step and keeps projects and poses in a document store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Settings file (default is the user config directory)")
	flags.String("log-level", "", "Log level override: debug, info, warn or error")
	flags.String("rig", "", "YAML rig describing the character scene graph")
	flags.StringP("project", "p", "", "Project name (defaults to the last project used)")
	flags.StringP("context", "c", "scene", "Skeleton context: scene or avatar")
	flags.BoolP("yes", "y", false, "Answer yes to every confirmation")
}
