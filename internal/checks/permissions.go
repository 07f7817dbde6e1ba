package checks

import (
	"context"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/report"
	"github.com/hardenaudit/hardenaudit/internal/system"
)

// PermissionCheck compares the mode of sensitive files with their expected value.
type PermissionCheck struct {
	rules []config.PermissionRule
	fsys  system.FileSystem
}

func NewPermissionCheck(cfg *config.Config, fsys system.FileSystem) *PermissionCheck {
	return &PermissionCheck{rules: cfg.Permissions.Rules, fsys: fsys}
}

func (c *PermissionCheck) Name() string           { return "permissions" }
func (c *PermissionCheck) Section() string        { return "File Permissions Check" }
func (c *PermissionCheck) Marker() string         { return "File Permission checked" }
func (c *PermissionCheck) Timeout() time.Duration { return system.TimeoutShort }

func (c *PermissionCheck) MaxScore() float64 {
	var max float64
	for _, r := range c.rules {
		max += r.Credit
	}
	return max
}

func (c *PermissionCheck) Run(ctx context.Context, w report.Writer) float64 {
	w.Section(c.Section())

	var score float64
	for _, rule := range c.rules {
		if ctx.Err() != nil {
			w.Add(report.SeverityError, "Could not check %s: %v", rule.Path, ctx.Err())
			continue
		}
		info, err := c.fsys.Stat(rule.Path)
		if err != nil {
			w.Add(report.SeverityError, "Could not check %s: %v", rule.Path, err)
			continue
		}
		if rule.Matches(info.Mode()) {
			w.Add(report.SeverityOK, "%s permissions are correct.", rule.Path)
			score += rule.Credit
		} else {
			w.Add(report.SeverityWarn, "%s has incorrect permissions: %s", rule.Path, config.UnixMode(info.Mode()))
		}
	}
	return clamp(score, c.MaxScore())
}
