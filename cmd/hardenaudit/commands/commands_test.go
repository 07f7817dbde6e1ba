package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hardenaudit/hardenaudit/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath = ""
		initConfigPath = ""
		initConfigForce = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetBuildInfo("1.2.3", "abc123", "2026-01-01")
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	for _, want := range []string{"hardenaudit 1.2.3", "commit: abc123", "built:  2026-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules", "--no-color")
	if err != nil {
		t.Fatalf("rules error = %v", err)
	}
	for _, want := range []string{
		"FIREWALL",
		"ufw status",
		"PermitRootLogin no",
		"/etc/passwd",
		"0644",
		`"rsh"`,
		"rkhunter --check --sk",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rules output missing %q", want)
		}
	}
}

func TestRulesCommandInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("timeouts:\n  command: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "rules", "--config", path); err == nil {
		t.Error("expected an error for an invalid config")
	}
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".hardenaudit.yaml")

	out, err := execute(t, "init-config", "--path", path)
	if err != nil {
		t.Fatalf("init-config error = %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q, want path mentioned", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(data, path)
	if err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if cfg.ReportPath != config.DefaultReportPath {
		t.Errorf("ReportPath = %q", cfg.ReportPath)
	}

	if _, err := execute(t, "init-config", "--path", path); err == nil {
		t.Error("second init-config without --force should fail")
	}
	if _, err := execute(t, "init-config", "--path", path, "--force"); err != nil {
		t.Errorf("init-config --force error = %v", err)
	}
}
