package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hardenaudit/hardenaudit/internal/audit"
	"github.com/hardenaudit/hardenaudit/internal/log"
	"github.com/hardenaudit/hardenaudit/internal/metrics"
	"github.com/hardenaudit/hardenaudit/internal/output"
)

var (
	reportPath   string
	summaryPath  string
	metricsPath  string
	maskHostname bool
	quiet        bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the hardening audit (default command)",
	Long: `Run every check in order, write the report and print the compliance score.

The report is truncated at the start of each run. The exit status is 0 whenever
the audit completes, whatever the score; 1 means it could not start (invalid
config or an uncreatable report directory).

Examples:
	sudo hardenaudit audit
	sudo hardenaudit audit --report Report/Report.txt --summary-json summary.json
	sudo hardenaudit audit --metrics-file /var/lib/node_exporter/textfile/hardenaudit.prom`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudit(cmd)
	},
}

func addAuditFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportPath, "report", "", "Report file path (overrides config reportPath)")
	cmd.Flags().StringVar(&summaryPath, "summary-json", "", "Also write a JSON run summary to this path")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Also write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&maskHostname, "mask-hostname", false, "Mask the host name in the summary and scorecard")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the scorecard")
}

func runAudit(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reportPath != "" {
		cfg.ReportPath = reportPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator := audit.FromConfig(cfg, cmd.OutOrStdout()).WithMaskedHostname(maskHostname)
	result, err := orchestrator.RunAudit(ctx)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(!color.NoColor)
	if summaryPath != "" {
		if err := formatter.WriteJSON(summaryPath, result); err != nil {
			log.WarnWithErr(err, "could not write run summary")
		}
	}
	if metricsPath != "" {
		registry := metrics.NewRegistry()
		metrics.RecordAudit(registry, result)
		if err := registry.WriteTextfile(metricsPath); err != nil {
			log.WarnWithErr(err, "could not write metrics textfile")
		}
	}
	if !quiet {
		cmd.PrintErr(formatter.ToText(result))
	}
	return nil
}

func init() {
	addAuditFlags(auditCmd)
	rootCmd.AddCommand(auditCmd)
}
