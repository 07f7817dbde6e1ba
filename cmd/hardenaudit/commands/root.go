// Package commands implements the hardenaudit command line.
package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/log"
	"github.com/hardenaudit/hardenaudit/internal/util"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// flags shared by the root command (which runs an audit) and its subcommands
var (
	configPath string
	verbose    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "hardenaudit",
	Short: "Audit a Linux host against a small hardening baseline",
	Long: `hardenaudit checks the firewall, SSH daemon settings, account database
permissions, running services and rootkit indicators, writes a plain-text
report and prints a compliance score.

Run it with root privileges; without them most checks can only report errors.

Examples:
	# Run the audit (same as "hardenaudit audit")
	sudo hardenaudit

	# Write the report elsewhere and keep a JSON summary
	sudo hardenaudit audit --report /var/log/hardenaudit.txt --summary-json /tmp/run.json

	# Show the rules being evaluated
	hardenaudit rules

Output:
	Progress markers go to stdout, one per check, ending with
	"Audit complete. Report saved to <path>". Logs and the scorecard go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(zerolog.DebugLevel)
			util.SetLogLevel(zapcore.DebugLevel)
		}
		if noColor {
			color.NoColor = true
			log.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudit(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search $HARDENAUDIT_CONFIG_DIR, ./, ~/, /etc/hardenaudit)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr (zerolog and zap)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	addAuditFlags(rootCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// SetBuildInfo records version metadata injected via -ldflags.
func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// BuildInfo returns the recorded version metadata.
func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// Execute runs the CLI and exits non-zero on startup failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.ErrorWithErr(err, "hardenaudit failed")
		os.Exit(1)
	}
}
