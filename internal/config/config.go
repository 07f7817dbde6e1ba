package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hardenaudit/hardenaudit/internal/errors"
)

// DefaultReportPath is where the report lands when nothing overrides it.
const DefaultReportPath = "Report/Report.txt"

// DefaultRunLabel heads every report.
const DefaultRunLabel = "Linux Hardening Audit Report"

type Config struct {
	ReportPath  string            `yaml:"reportPath"`
	RunLabel    string            `yaml:"runLabel"`
	UseSudo     bool              `yaml:"useSudo"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
	Firewall    FirewallConfig    `yaml:"firewall"`
	SSH         SSHConfig         `yaml:"ssh"`
	Permissions PermissionsConfig `yaml:"permissions"`
	Services    ServicesConfig    `yaml:"services"`
	Rootkit     RootkitConfig     `yaml:"rootkit"`
}

// TimeoutConfig bounds each external command, in seconds.
type TimeoutConfig struct {
	Command int `yaml:"command"` // default: 5s
	Rootkit int `yaml:"rootkit"` // default: 120s, rkhunter is slow
}

type FirewallConfig struct {
	Primary      []string `yaml:"primary"`
	ActiveMarker string   `yaml:"activeMarker"`
	Fallback     []string `yaml:"fallback"`
}

type SSHConfig struct {
	ConfigPath string    `yaml:"configPath"`
	Rules      []SSHRule `yaml:"rules"`
}

type PermissionsConfig struct {
	Rules []PermissionRule `yaml:"rules"`
}

type ServicesConfig struct {
	Command  []string      `yaml:"command"`
	Denylist []ServiceRule `yaml:"denylist"`
}

type RootkitConfig struct {
	Binary      string   `yaml:"binary"`
	Args        []string `yaml:"args"`
	CleanMarker string   `yaml:"cleanMarker"`
}

func Default() *Config {
	return &Config{
		ReportPath: DefaultReportPath,
		RunLabel:   DefaultRunLabel,
		UseSudo:    true,
		Timeouts: TimeoutConfig{
			Command: 5,
			Rootkit: 120,
		},
		Firewall: FirewallConfig{
			Primary:      []string{"ufw", "status"},
			ActiveMarker: "Status: active",
			Fallback:     []string{"iptables", "-L"},
		},
		SSH: SSHConfig{
			ConfigPath: "/etc/ssh/sshd_config",
			Rules:      DefaultSSHRules(),
		},
		Permissions: PermissionsConfig{
			Rules: DefaultPermissionRules(),
		},
		Services: ServicesConfig{
			Command:  []string{"systemctl", "list-units", "--type=service", "--state=running"},
			Denylist: DefaultServiceDenylist(),
		},
		Rootkit: RootkitConfig{
			Binary:      "rkhunter",
			Args:        []string{"--check", "--sk"},
			CleanMarker: "0 suspect files",
		},
	}
}

// SearchPaths lists config locations in priority order.
func SearchPaths() []string {
	searchPaths := []string{}

	// 1. Environment variable (highest priority - for containers)
	if configDir := os.Getenv("HARDENAUDIT_CONFIG_DIR"); configDir != "" {
		searchPaths = append(searchPaths,
			filepath.Join(configDir, ".hardenaudit.yaml"),
			filepath.Join(configDir, ".hardenaudit.yml"),
		)
	}

	// 2. Current directory
	searchPaths = append(searchPaths, ".hardenaudit.yaml", ".hardenaudit.yml")

	// 3. Home directory
	if home, _ := os.UserHomeDir(); home != "" {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".hardenaudit.yaml"),
			filepath.Join(home, ".hardenaudit.yml"),
		)
	}

	// 4. System-wide config
	return append(searchPaths, "/etc/hardenaudit/config.yaml")
}

// Load reads the first config found on the search path, or explicitPath when
// set (which must then exist). Without any file the defaults are returned.
func Load(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidConfig, "read %s: %v", explicitPath, err)
		}
		return Parse(data, explicitPath)
	}

	for _, path := range SearchPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return Parse(data, path)
	}

	return Default(), nil
}

// Parse overlays YAML onto the defaults and validates the result.
func Parse(data []byte, source string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, "invalid config at %s: %v", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed (%s)", source)
	}
	return cfg, nil
}

// CommandTimeout is the bound applied to every tool except the rootkit scanner.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Timeouts.Command) * time.Second
}

// RootkitTimeout is the bound applied to the rootkit scanner.
func (c *Config) RootkitTimeout() time.Duration {
	return time.Duration(c.Timeouts.Rootkit) * time.Second
}

// AllowedBinaries returns every external tool the configured checks invoke.
func (c *Config) AllowedBinaries() []string {
	bins := []string{}
	for _, argv := range [][]string{c.Firewall.Primary, c.Firewall.Fallback, c.Services.Command} {
		if len(argv) > 0 {
			bins = append(bins, argv[0])
		}
	}
	if c.Rootkit.Binary != "" {
		bins = append(bins, c.Rootkit.Binary)
	}
	return bins
}

// Validate checks config for errors
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ReportPath) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "reportPath must not be empty")
	}
	if c.Timeouts.Command <= 0 || c.Timeouts.Rootkit <= 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "timeouts must be positive, got command=%d rootkit=%d",
			c.Timeouts.Command, c.Timeouts.Rootkit)
	}

	if len(c.Firewall.Primary) == 0 || len(c.Firewall.Fallback) == 0 || c.Firewall.ActiveMarker == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "firewall primary, fallback and activeMarker are required")
	}
	if len(c.Services.Command) == 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "services command is required")
	}
	if c.Rootkit.Binary == "" || c.Rootkit.CleanMarker == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "rootkit binary and cleanMarker are required")
	}
	if c.SSH.ConfigPath == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "ssh configPath is required")
	}

	var sshCredit float64
	for _, r := range c.SSH.Rules {
		if r.Directive == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "ssh rule with empty directive")
		}
		sshCredit += r.Credit
	}
	if err := checkCredit("ssh", sshCredit); err != nil {
		return err
	}

	var permCredit float64
	for _, r := range c.Permissions.Rules {
		if r.Path == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "permission rule with empty path")
		}
		if r.Mode > 07777 {
			return errors.Wrap(errors.ErrInvalidConfig, "permission rule %s: mode %o out of range", r.Path, uint32(r.Mode))
		}
		permCredit += r.Credit
	}
	if err := checkCredit("permissions", permCredit); err != nil {
		return err
	}

	if len(c.Services.Denylist) == 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "services denylist must not be empty")
	}
	for _, r := range c.Services.Denylist {
		if r.Pattern == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "service rule with empty pattern")
		}
	}

	return nil
}

// checkCredit keeps each rule-driven check worth exactly one point, so the
// audit-wide maximum stays at the declared value.
func checkCredit(check string, total float64) error {
	if math.Abs(total-1.0) > 1e-9 {
		return errors.Wrap(errors.ErrInvalidConfig, "%s rule credits must sum to 1.0, got %s", check, fmt.Sprint(total))
	}
	return nil
}

// Marshal renders the config as YAML, e.g. for init-config.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
