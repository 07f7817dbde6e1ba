package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/util"
)

var (
	initConfigPath  string
	initConfigForce bool
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default config to disk for editing",
	Long: `Write the built-in rule set as YAML. Root writes
/etc/hardenaudit/config.yaml, other users ~/.hardenaudit.yaml.

Examples:
	hardenaudit init-config
	hardenaudit init-config --path ./.hardenaudit.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initConfigPath
		if path == "" {
			path = util.GetConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !initConfigForce {
			return errors.Wrap(errors.ErrFileOperation, "%s already exists (use --force to overwrite)", path)
		}

		data, err := config.Default().Marshal()
		if err != nil {
			return errors.Wrap(errors.ErrInvalidConfig, "encode defaults: %v", err)
		}
		if err := util.EnsureParentDir(path); err != nil {
			return errors.Wrap(errors.ErrFileOperation, "create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.Wrap(errors.ErrFileOperation, "write %s: %v", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().StringVar(&initConfigPath, "path", "", "Destination file (default depends on user)")
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initConfigCmd)
}
