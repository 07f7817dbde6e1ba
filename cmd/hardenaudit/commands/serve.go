package commands

import (
	"github.com/spf13/cobra"

	"github.com/hardenaudit/hardenaudit/internal/log"
	"github.com/hardenaudit/hardenaudit/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit as MCP tools over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing two tools:

	run_hardening_audit   run one audit and return the score and report text
	list_rules            describe the rules being evaluated

Live audits need the same privileges as "hardenaudit audit".

Examples:
	sudo hardenaudit serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log.Infof("Starting MCP server (report path %s)", cfg.ReportPath)
		return mcp.NewServer(cfg, buildVersion).Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
