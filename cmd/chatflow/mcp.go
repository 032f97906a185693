package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/chatflow/internal/cli"
	"github.com/aretw0/chatflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes chatflow to AI agents as MCP tools: validate_flow, execute_turn, converse and
get_flow, plus the chatflow://node-types resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.BuildRuntime(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := mcp.NewServer(rt.Engine, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Logs must not corrupt JSON-RPC on stdout.
			log.SetOutput(os.Stderr)
			logger.Info("starting chatflow MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting chatflow MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
