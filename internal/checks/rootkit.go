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

// RootkitCheck runs rkhunter when it is installed.
type RootkitCheck struct {
	cfg     config.RootkitConfig
	timeout time.Duration
	runner  system.Runner
}

func NewRootkitCheck(cfg *config.Config, runner system.Runner) *RootkitCheck {
	return &RootkitCheck{cfg: cfg.Rootkit, timeout: cfg.RootkitTimeout(), runner: runner}
}

func (c *RootkitCheck) Name() string      { return "rootkit" }
func (c *RootkitCheck) Section() string   { return "Rootkit Check" }
func (c *RootkitCheck) Marker() string    { return "Rootkit Scanned successfully" }
func (c *RootkitCheck) MaxScore() float64 { return 1.0 }

func (c *RootkitCheck) Timeout() time.Duration { return c.timeout + time.Second }

func (c *RootkitCheck) Run(ctx context.Context, w report.Writer) float64 {
	w.Section(c.Section())

	if _, err := c.runner.LookPath(c.cfg.Binary); err != nil {
		w.Add(report.SeverityInfo, "%s not installed. Skipping.", c.cfg.Binary)
		return 0
	}
	w.Add(report.SeverityInfo, "%s installed. Running check...", c.cfg.Binary)

	// rkhunter exits non-zero whenever it has warnings, so only a failure to
	// produce output at all is treated as an invocation error.
	result, err := c.runner.Run(ctx, c.timeout, c.cfg.Binary, c.cfg.Args...)
	if result == nil || result.TimedOut || (err != nil && !errors.Is(err, errors.ErrCommandFailed)) {
		w.Add(report.SeverityInfo, "%s could not complete: %s", c.cfg.Binary, describe(result, err))
		return 0
	}
	if err != nil && system.PermissionRefused(result) {
		w.Add(report.SeverityInfo, "%s could not complete: root privileges required", c.cfg.Binary)
		return 0
	}

	if strings.Contains(result.Stdout, c.cfg.CleanMarker) {
		w.Add(report.SeverityOK, "No rootkits found.")
		return c.MaxScore()
	}
	w.Add(report.SeverityWarn, "Possible rootkit issues. Review manually.")
	return 0
}
