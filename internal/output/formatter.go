// Package output renders an audit result for people (colored text) and
// for machines (the run summary JSON).
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/hardenaudit/hardenaudit/internal/audit"
	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/report"
	"github.com/hardenaudit/hardenaudit/internal/scoring"
	"github.com/hardenaudit/hardenaudit/internal/util"
)

// Traffic light status
const (
	StatusGreen  = "green"
	StatusYellow = "yellow"
	StatusRed    = "red"
)

// Summary is the machine-readable digest of one run.
type Summary struct {
	RunID       string          `json:"run_id"`
	Label       string          `json:"label"`
	Timestamp   string          `json:"timestamp"`
	Hostname    string          `json:"hostname"`
	Distro      string          `json:"distro"`
	Kernel      string          `json:"kernel"`
	ReportPath  string          `json:"report_path"`
	Status      string          `json:"status"`
	Verdict     scoring.Verdict `json:"verdict"`
	Checks      []CheckSummary  `json:"checks"`
	Advice      []string        `json:"advice,omitempty"`
	WriteErrors int             `json:"report_write_errors,omitempty"`
}

type CheckSummary struct {
	Name       string   `json:"name"`
	Score      float64  `json:"score"`
	MaxScore   float64  `json:"max_score"`
	DurationMS int64    `json:"duration_ms"`
	Issues     []string `json:"issues,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Formatter handles output formatting
type Formatter struct {
	colored bool
}

// NewFormatter creates a formatter; colored forces ANSI colors on or off
// regardless of terminal detection.
func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

// Summarize condenses a result.
func Summarize(r *audit.Result) *Summary {
	s := &Summary{
		RunID:       r.RunID,
		Label:       r.Label,
		Timestamp:   r.FinishedAt.UTC().Format(time.RFC3339),
		ReportPath:  r.ReportPath,
		Status:      trafficLight(r.Verdict.Tier),
		Verdict:     r.Verdict,
		WriteErrors: r.ReportErrors,
	}
	if r.Host != nil {
		s.Hostname = r.Host.Hostname
		s.Distro = r.Host.Distro
		s.Kernel = r.Host.Kernel
	}

	for _, c := range r.Checks {
		cs := CheckSummary{
			Name:       c.Name,
			Score:      c.Score,
			MaxScore:   c.MaxScore,
			DurationMS: c.Duration.Milliseconds(),
			Error:      c.Error,
		}
		for _, f := range c.Findings {
			if isIssue(f.Severity) {
				cs.Issues = append(cs.Issues, f.Severity.Tag()+" "+f.Message)
			}
		}
		s.Checks = append(s.Checks, cs)
	}
	s.Advice = generateAdvice(r.Checks)
	return s
}

// ToJSON outputs the summary as indented JSON.
func (f *Formatter) ToJSON(r *audit.Result) ([]byte, error) {
	return json.MarshalIndent(Summarize(r), "", "  ")
}

// WriteJSON writes the summary to path, replacing any previous run.
func (f *Formatter) WriteJSON(path string, r *audit.Result) error {
	data, err := f.ToJSON(r)
	if err != nil {
		return errors.Wrap(errors.ErrFileOperation, "encode summary: %v", err)
	}
	if err := util.EnsureParentDir(path); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrap(errors.ErrFileOperation, "write summary %s: %v", path, err)
	}
	return nil
}

// ToText renders a short scorecard of the run.
func (f *Formatter) ToText(r *audit.Result) string {
	bold := f.paint(color.Bold)
	var sb strings.Builder

	sb.WriteString("\n")
	bold.Fprintf(&sb, "%s\n", r.Label)
	if r.Host != nil {
		sb.WriteString(fmt.Sprintf("  Host:   %s (%s, kernel %s)\n", r.Host.Hostname, r.Host.Distro, r.Host.Kernel))
	}
	sb.WriteString(fmt.Sprintf("  Run:    %s\n", r.RunID))
	sb.WriteString(fmt.Sprintf("  Report: %s\n\n", r.ReportPath))

	for _, c := range r.Checks {
		status := f.paint(color.FgGreen).Sprint("PASS")
		switch {
		case c.Score == 0:
			status = f.paint(color.FgRed).Sprint("FAIL")
		case c.Score < c.MaxScore:
			status = f.paint(color.FgYellow).Sprint("PART")
		}
		sb.WriteString(fmt.Sprintf("  [%s] %-12s %.2f/%.2f\n", status, c.Name, c.Score, c.MaxScore))
	}

	sb.WriteString("\n")
	sb.WriteString("  " + f.tierColor(r.Verdict.Tier).Sprint(r.Verdict.ScoreLine()) + "\n")
	sb.WriteString("  " + r.Verdict.Recommendation + "\n")

	if advice := generateAdvice(r.Checks); len(advice) > 0 {
		sb.WriteString("\n")
		bold.Fprintf(&sb, "  Next steps\n")
		for _, a := range advice {
			sb.WriteString(fmt.Sprintf("  - %s\n", a))
		}
	}
	if r.ReportErrors > 0 {
		sb.WriteString(f.paint(color.FgYellow).Sprintf("\n  Warning: %d report lines could not be written.\n", r.ReportErrors))
	}
	return sb.String()
}

func (f *Formatter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f.colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (f *Formatter) tierColor(t scoring.Tier) *color.Color {
	switch t {
	case scoring.TierCritical:
		return f.paint(color.FgRed, color.Bold)
	case scoring.TierNeedsWork:
		return f.paint(color.FgYellow, color.Bold)
	default:
		return f.paint(color.FgGreen, color.Bold)
	}
}

func trafficLight(t scoring.Tier) string {
	switch t {
	case scoring.TierCritical:
		return StatusRed
	case scoring.TierNeedsWork:
		return StatusYellow
	default:
		return StatusGreen
	}
}

func isIssue(s report.Severity) bool {
	return s == report.SeverityWarn || s == report.SeverityFail || s == report.SeverityError
}

// generateAdvice suggests one remediation per check that lost credit.
func generateAdvice(outcomes []audit.CheckOutcome) []string {
	advice := []string{}
	for _, c := range outcomes {
		if c.Score >= c.MaxScore {
			continue
		}
		var tip string
		switch c.Name {
		case "firewall":
			tip = "Enable UFW firewall: sudo ufw enable && sudo ufw default deny incoming"
		case "ssh":
			tip = "Harden sshd: set PermitRootLogin no and PasswordAuthentication no in /etc/ssh/sshd_config"
		case "permissions":
			tip = "Restore account database modes: chmod 0644 /etc/passwd && chmod 0400 /etc/shadow"
		case "services":
			tip = "Disable cleartext services: sudo systemctl disable --now <unit>"
		case "rootkit":
			switch {
			case hasSeverity(c.Findings, report.SeverityWarn):
				tip = "Review rkhunter warnings in /var/log/rkhunter.log"
			case len(c.Findings) == 1:
				tip = "Install rkhunter to enable rootkit scanning"
			default:
				tip = "Run rkhunter --check manually; the scan did not complete"
			}
		}
		if tip != "" {
			advice = append(advice, tip)
		}
	}
	return advice
}

func hasSeverity(findings []report.Finding, sev report.Severity) bool {
	for _, f := range findings {
		if f.Severity == sev {
			return true
		}
	}
	return false
}
