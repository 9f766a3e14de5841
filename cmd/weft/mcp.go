package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	mcpAdapter "github.com/aretw0/weft/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose registered targets as MCP tools",
	Long:  `Starts an MCP server over stdio (default) or SSE. Each target becomes a tool that calls through its advice chain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sse, _ := cmd.Flags().GetString("sse")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.NewRuntime(ctx, cfg, logger, cli.Options{})
		if err != nil {
			return err
		}
		defer rt.Close(context.WithoutCancel(ctx))

		server := mcpAdapter.NewServer(rt.Engine, logger)
		if sse != "" {
			return server.ServeSSE(ctx, sse)
		}
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("sse", "", "Serve SSE on this address instead of stdio (e.g. :8081)")
}
