package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/act/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the editor to Model Context Protocol clients",
	Long: `Opens the project and exposes skeleton, history and pose tools over MCP,
on stdio by default or over SSE with --port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.openEditor(cmd, true); err != nil {
			return err
		}

		srv := mcp.NewServer(a.editor, mcp.WithLogger(a.logger))
		if port == 0 {
			return srv.ServeStdio()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ServeSSE(ctx, port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int("port", 0, "Serve SSE on this port instead of stdio")
}
