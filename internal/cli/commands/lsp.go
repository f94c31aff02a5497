package commands

import (
	"github.com/leapstack-labs/leapjpql/internal/cli/config"
	"github.com/leapstack-labs/leapjpql/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for IDE integration.

The server communicates over stdin/stdout using JSON-RPC. It publishes
syntax diagnostics for open .jpql documents and offers completion,
semantic highlighting and formatting.`,
		Example: `  # Start LSP server (usually called by an IDE)
  jpql lsp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	server := lsp.NewServer(version, cfg.ParserOptions(), cfg.FormatOptions(), logger)
	return server.RunStdio()
}
