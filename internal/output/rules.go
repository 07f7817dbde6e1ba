package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/hardenaudit/hardenaudit/internal/config"
)

// PrintRules lists the effective rule set: what each check runs or reads and
// what earns credit.
func (f *Formatter) PrintRules(w io.Writer, cfg *config.Config) {
	heading := func(title string) {
		fmt.Fprintln(w, "----------------------------------------")
		f.paint(color.Bold).Fprintf(w, "%s\n", title)
		fmt.Fprintln(w, "----------------------------------------")
	}

	heading("FIREWALL")
	fmt.Fprintf(w, "  %s -> active when output contains %q (1.00)\n", strings.Join(cfg.Firewall.Primary, " "), cfg.Firewall.ActiveMarker)
	fmt.Fprintf(w, "  %s -> fallback, present when listing succeeds (0.50)\n", strings.Join(cfg.Firewall.Fallback, " "))
	fmt.Fprintln(w)

	heading("SSH " + cfg.SSH.ConfigPath)
	for _, r := range cfg.SSH.Rules {
		fmt.Fprintf(w, "  %-32s %.2f\n", r.Directive, r.Credit)
	}
	fmt.Fprintln(w)

	heading("FILE PERMISSIONS")
	for _, r := range cfg.Permissions.Rules {
		fmt.Fprintf(w, "  %-32s %s  %.2f\n", r.Path, r.Mode, r.Credit)
	}
	fmt.Fprintln(w)

	heading("SERVICES")
	fmt.Fprintf(w, "  %s\n", strings.Join(cfg.Services.Command, " "))
	for _, r := range cfg.Services.Denylist {
		fmt.Fprintf(w, "  deny %-27q %s\n", r.Pattern, r.Protocol)
	}
	fmt.Fprintln(w)

	heading("ROOTKIT")
	fmt.Fprintf(w, "  %s %s -> clean when output contains %q (1.00)\n",
		cfg.Rootkit.Binary, strings.Join(cfg.Rootkit.Args, " "), cfg.Rootkit.CleanMarker)
	fmt.Fprintf(w, "  timeout %s\n", cfg.RootkitTimeout())
}
