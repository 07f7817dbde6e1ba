package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hardenaudit/hardenaudit/internal/output"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules the audit evaluates",
	Long: `List the effective rule set after config is applied: the firewall
commands, the SSH directives, the expected file modes, the service denylist
and the rootkit scanner invocation, with the credit each is worth.

Examples:
	hardenaudit rules
	hardenaudit rules --config ./strict.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		output.NewFormatter(!color.NoColor).PrintRules(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
