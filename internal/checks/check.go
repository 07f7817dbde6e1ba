// Package checks implements the hardening checks. Each check inspects one
// facet of the host, records findings in the report and returns its credit.
package checks

import (
	"context"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/report"
	"github.com/hardenaudit/hardenaudit/internal/system"
)

// DeclaredMaxScore is the sum of every check's maximum.
const DeclaredMaxScore = 5.0

// Check is the interface all checks implement.
type Check interface {
	// Name is the short identifier used in logs and progress output.
	Name() string
	// Section is the report heading the check writes under.
	Section() string
	// Marker is printed on stdout once the check has finished.
	Marker() string
	MaxScore() float64
	Timeout() time.Duration
	// Run records findings and returns a credit in [0, MaxScore()].
	// Tool and file errors become findings; Run never returns an error.
	Run(ctx context.Context, w report.Writer) float64
}

// Registry keeps checks in execution order.
type Registry struct {
	checks []Check
	byName map[string]Check
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Check)}
}

// Register appends a check. Registering a name twice replaces the earlier
// check in place.
func (r *Registry) Register(c Check) {
	if _, ok := r.byName[c.Name()]; ok {
		for i, existing := range r.checks {
			if existing.Name() == c.Name() {
				r.checks[i] = c
			}
		}
	} else {
		r.checks = append(r.checks, c)
	}
	r.byName[c.Name()] = c
}

// Get retrieves a check by name.
func (r *Registry) Get(name string) (Check, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// All returns the checks in registration order.
func (r *Registry) All() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// MaxScore sums the maxima of the registered checks.
func (r *Registry) MaxScore() float64 {
	var total float64
	for _, c := range r.checks {
		total += c.MaxScore()
	}
	return total
}

// Default registers the five hardening checks in report order.
func Default(cfg *config.Config, runner system.Runner, fsys system.FileSystem) *Registry {
	r := NewRegistry()
	r.Register(NewFirewallCheck(cfg, runner))
	r.Register(NewSSHCheck(cfg, fsys))
	r.Register(NewPermissionCheck(cfg, fsys))
	r.Register(NewServiceCheck(cfg, runner))
	r.Register(NewRootkitCheck(cfg, runner))
	return r
}

// clamp keeps a computed credit inside [0, max].
func clamp(score, max float64) float64 {
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}

// describe turns a command error into the short reason written in findings.
func describe(result *system.CommandResult, err error) string {
	if result != nil && result.TimedOut {
		return "timed out"
	}
	if err != nil {
		return err.Error()
	}
	if result != nil && !result.Success {
		return "exited with non-zero status"
	}
	return "unknown error"
}
