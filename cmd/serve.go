package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/kisanmitra/kisanmitra/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts a Model Context Protocol server on stdin/stdout so MCP clients
can chat with the assistant, classify text, and look up market prices.

All diagnostics go to stderr; stdout carries only the MCP protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		engine, prices, database, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		mcpserver.Version = Version
		return mcpserver.NewServer(engine, prices).Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
