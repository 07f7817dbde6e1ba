package checks

import (
	"context"
	"strings"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/report"
	"github.com/hardenaudit/hardenaudit/internal/system"
)

// ServiceCheck flags running units that speak a legacy cleartext protocol.
type ServiceCheck struct {
	cfg     config.ServicesConfig
	timeout time.Duration
	runner  system.Runner
}

func NewServiceCheck(cfg *config.Config, runner system.Runner) *ServiceCheck {
	return &ServiceCheck{cfg: cfg.Services, timeout: cfg.CommandTimeout(), runner: runner}
}

func (c *ServiceCheck) Name() string      { return "services" }
func (c *ServiceCheck) Section() string   { return "Services Check" }
func (c *ServiceCheck) Marker() string    { return "Services Scanned Successfully" }
func (c *ServiceCheck) MaxScore() float64 { return 1.0 }

func (c *ServiceCheck) Timeout() time.Duration { return c.timeout + time.Second }

func (c *ServiceCheck) Run(ctx context.Context, w report.Writer) float64 {
	w.Section(c.Section())

	result, err := c.runner.Run(ctx, c.timeout, c.cfg.Command[0], c.cfg.Command[1:]...)
	if err != nil || result == nil || !result.Success {
		w.Add(report.SeverityError, "Service check failed: %s", describe(result, err))
		return 0
	}

	suspects := SuspiciousUnits(result.Stdout, c.cfg.Denylist)
	if len(suspects) == 0 {
		w.Add(report.SeverityOK, "No insecure services detected.")
		return c.MaxScore()
	}
	for _, line := range suspects {
		w.Add(report.SeverityWarn, "Unsecure service running: %s", line)
	}
	return 0
}

// SuspiciousUnits returns every listing line matched by at least one rule.
// Each line appears once even when several rules match it.
func SuspiciousUnits(listing string, denylist []config.ServiceRule) []string {
	var out []string
	for _, line := range strings.Split(listing, "\n") {
		for _, rule := range denylist {
			if rule.Matches(line) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}
