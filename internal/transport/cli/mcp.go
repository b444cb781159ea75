package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/drugfacts/internal/logger"
	"github.com/kailas-cloud/drugfacts/internal/transport/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead.

Tools:
  search_drug_facts   rank corpus records and return the grounding context
  ask_drug_question   grounded answer (only when DEEPSEEK_API_KEY is set)

Example client configuration:
  {
    "mcpServers": {
      "drugfacts": {
        "command": "/path/to/drugfacts",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}
	// Logs go to stderr; stdout carries the protocol.
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := logpkg.ContextWithLogger(cmd.Context(), logger)

	a, err := buildApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := mcp.NewServer(&mcp.Ports{
		Search:   a.retrieval,
		Answers:  a.answers,
		DefaultK: cfg.Retrieval.TopK,
	})
	if err != nil {
		return err
	}
	logger.Info("MCP server ready", zap.Strings("tools", server.Tools()))

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}
