package checks

import (
	"context"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/report"
	"github.com/hardenaudit/hardenaudit/internal/system"
)

// SSHCheck scans sshd_config for hardening directives.
type SSHCheck struct {
	cfg  config.SSHConfig
	fsys system.FileSystem
}

func NewSSHCheck(cfg *config.Config, fsys system.FileSystem) *SSHCheck {
	return &SSHCheck{cfg: cfg.SSH, fsys: fsys}
}

func (c *SSHCheck) Name() string           { return "ssh" }
func (c *SSHCheck) Section() string        { return "SSH Configuration Check" }
func (c *SSHCheck) Marker() string         { return "SSH config files scanned" }
func (c *SSHCheck) Timeout() time.Duration { return system.TimeoutShort }

func (c *SSHCheck) MaxScore() float64 {
	var max float64
	for _, r := range c.cfg.Rules {
		max += r.Credit
	}
	return max
}

func (c *SSHCheck) Run(ctx context.Context, w report.Writer) float64 {
	w.Section(c.Section())

	data, err := c.fsys.ReadFile(c.cfg.ConfigPath)
	if err != nil {
		w.Add(report.SeverityError, "SSH config check failed: %v", err)
		return 0
	}
	content := string(data)

	var score float64
	for _, rule := range c.cfg.Rules {
		if rule.Satisfied(content) {
			w.Add(report.SeverityOK, "%s", okText(rule))
			score += rule.Credit
		} else {
			w.Add(report.SeverityWarn, "%s", warnText(rule))
		}
	}
	return clamp(score, c.MaxScore())
}

func okText(r config.SSHRule) string {
	if r.OK != "" {
		return r.OK
	}
	return r.Directive + " is set."
}

func warnText(r config.SSHRule) string {
	if r.Warn != "" {
		return r.Warn
	}
	return r.Directive + " is not set."
}
