package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/ntmtrace/internal/cli"
	"github.com/aretw0/ntmtrace/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts ntmtrace as an MCP Server, so AI agents can list machines and
trace input words as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		useSSE, _ := cmd.Flags().GetBool("sse")
		port, _ := cmd.Flags().GetInt("port")

		srv := mcp.NewServer(app.Tracer,
			mcp.WithLogger(app.Logger),
			mcp.WithMaxDepth(app.Config.MaxDepth),
			mcp.WithDepthLimit(app.Config.HTTP.DepthLimit),
		)

		if !useSSE {
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			app.Logger.Info("starting ntmtrace MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				app.Logger.Error("MCP server execution failed", "err", err)
				app.Close()
				os.Exit(1)
			}
			return
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		app.Logger.Info("starting ntmtrace MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("MCP server execution failed", "err", err)
			app.Close()
			os.Exit(1)
		}
		app.Logger.Info("MCP server stopped gracefully", "signal", ctx.Signal())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
