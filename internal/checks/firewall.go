package checks

import (
	"context"
	"strings"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/report"
	"github.com/hardenaudit/hardenaudit/internal/system"
)

// FirewallCheck looks for an active ufw, falling back to iptables.
type FirewallCheck struct {
	cfg     config.FirewallConfig
	timeout time.Duration
	runner  system.Runner
}

func NewFirewallCheck(cfg *config.Config, runner system.Runner) *FirewallCheck {
	return &FirewallCheck{cfg: cfg.Firewall, timeout: cfg.CommandTimeout(), runner: runner}
}

func (c *FirewallCheck) Name() string      { return "firewall" }
func (c *FirewallCheck) Section() string   { return "Firewall Check" }
func (c *FirewallCheck) Marker() string    { return "Firewall check Completed" }
func (c *FirewallCheck) MaxScore() float64 { return 1.0 }

// Timeout covers the primary attempt plus the fallback.
func (c *FirewallCheck) Timeout() time.Duration { return 2*c.timeout + time.Second }

func (c *FirewallCheck) Run(ctx context.Context, w report.Writer) float64 {
	w.Section(c.Section())

	primary := c.cfg.Primary[0]
	if _, err := c.runner.LookPath(primary); err == nil {
		result, err := c.runner.Run(ctx, c.timeout, primary, c.cfg.Primary[1:]...)
		switch {
		case errors.Is(err, errors.ErrCommandNotFound):
			// vanished between lookup and exec; treat as absent
		case err != nil:
			w.Add(report.SeverityError, "Firewall check error: %s", describe(result, err))
			return 0
		case strings.Contains(result.Stdout, c.cfg.ActiveMarker):
			w.Add(report.SeverityOK, "UFW is active.")
			return c.MaxScore()
		default:
			w.Add(report.SeverityWarn, "UFW is inactive.")
			return 0
		}
	}

	return c.fallback(ctx, w)
}

// fallback only establishes that iptables is present and can list rules;
// the ruleset itself is not evaluated.
func (c *FirewallCheck) fallback(ctx context.Context, w report.Writer) float64 {
	bin := c.cfg.Fallback[0]
	if _, err := c.runner.LookPath(bin); err == nil {
		result, err := c.runner.Run(ctx, c.timeout, bin, c.cfg.Fallback[1:]...)
		if err == nil && result != nil && result.Success {
			w.Add(report.SeverityInfo, "iptables found.")
			return clamp(0.5, c.MaxScore())
		}
	}

	w.Add(report.SeverityFail, "No firewall detected (ufw/iptables).")
	return 0
}
