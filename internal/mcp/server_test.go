package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hardenaudit/hardenaudit/internal/audit"
	"github.com/hardenaudit/hardenaudit/internal/checks"
	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/system/systemtest"
)

func fakeFactory(c *config.Config) *audit.Orchestrator {
	runner := systemtest.NewRunner("iptables", "systemctl").
		Succeed("Chain INPUT (policy DROP)\n", "iptables", "-L").
		Succeed("  telnet.socket loaded active running Telnet\n",
			"systemctl", "list-units", "--type=service", "--state=running")
	fsys := systemtest.NewFS().
		Add("/etc/ssh/sshd_config", "PermitRootLogin no\n", 0644).
		Add("/etc/passwd", "", 0644).
		Add("/etc/shadow", "", 0640)

	return audit.NewOrchestrator(checks.Default(c, runner, fsys), fsys, audit.Options{
		ReportPath: c.ReportPath,
		RunLabel:   c.RunLabel,
	}).WithLogger(zap.NewNop())
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// serverIn returns a server whose configured report lives in dir.
func serverIn(dir string) *Server {
	cfg := config.Default()
	cfg.ReportPath = filepath.Join(dir, "Report.txt")
	s := NewServer(cfg, "test")
	s.SetFactory(fakeFactory)
	return s
}

func TestRunAuditTool(t *testing.T) {
	dir := t.TempDir()
	s := serverIn(dir)

	path := filepath.Join(dir, "nightly.txt")
	res, err := s.handleRunAudit(context.Background(), callRequest(ToolRunAudit, map[string]any{
		"report_path": path,
	}))
	if err != nil {
		t.Fatalf("handleRunAudit() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned error: %s", resultText(t, res))
	}

	// iptables 0.5 + ssh 0.5 + passwd 0.5 + services 0 + rootkit 0 = 1.5/5
	text := resultText(t, res)
	for _, want := range []string{
		"Compliance Score: 30.00%",
		"System is critically vulnerable. Immediate hardening recommended.",
		"### Firewall Check ###",
		"[WARN] Unsecure service running:",
		"=== FINAL SCORE ===",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q", want)
		}
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("report not written to requested path: %v", err)
	}
}

func TestRunAuditToolStartupFailure(t *testing.T) {
	dir := t.TempDir()
	s := serverIn(dir)

	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	res, err := s.handleRunAudit(context.Background(), callRequest(ToolRunAudit, map[string]any{
		"report_path": filepath.Join(blocker, "Report.txt"),
	}))
	if err != nil {
		t.Fatalf("handleRunAudit() error = %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result for an uncreatable report")
	}
}

func TestRunAuditToolRejectsOutsidePaths(t *testing.T) {
	reportDir := t.TempDir()
	s := serverIn(reportDir)

	victim := filepath.Join(t.TempDir(), "passwd")
	const content = "root:x:0:0::/root:/bin/bash\n"
	if err := os.WriteFile(victim, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(reportDir, "link.txt")
	if err := os.Symlink(victim, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"absolute outside", victim},
		{"relative escape", filepath.Join("..", filepath.Base(filepath.Dir(victim)), "passwd")},
		{"symlink inside", link},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleRunAudit(context.Background(), callRequest(ToolRunAudit, map[string]any{
				"report_path": tt.path,
			}))
			if err != nil {
				t.Fatalf("handleRunAudit() error = %v", err)
			}
			if !res.IsError {
				t.Errorf("report_path %s accepted", tt.path)
			}
			data, err := os.ReadFile(victim)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != content {
				t.Errorf("target overwritten: %q", data)
			}
		})
	}
}

func TestReportPathWithin(t *testing.T) {
	dir := t.TempDir()
	configured := filepath.Join(dir, "Report.txt")

	tests := []struct {
		name      string
		requested string
		want      string
		wantErr   bool
	}{
		{"default", "", configured, false},
		{"relative name", "weekly.txt", filepath.Join(dir, "weekly.txt"), false},
		{"subdirectory", "runs/one.txt", filepath.Join(dir, "runs", "one.txt"), false},
		{"absolute inside", filepath.Join(dir, "x.txt"), filepath.Join(dir, "x.txt"), false},
		{"parent escape", "../x.txt", "", true},
		{"system file", "/etc/passwd", "", true},
		{"directory itself", ".", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReportPathWithin(configured, tt.requested)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReportPathWithin(%q) error = %v, wantErr %v", tt.requested, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ReportPathWithin(%q) = %q, want %q", tt.requested, got, tt.want)
			}
		})
	}
}

func TestListRulesTool(t *testing.T) {
	s := NewServer(config.Default(), "test")

	res, err := s.handleListRules(context.Background(), callRequest(ToolListRules, nil))
	if err != nil {
		t.Fatalf("handleListRules() error = %v", err)
	}
	text := resultText(t, res)
	for _, want := range []string{"PermitRootLogin no", "/etc/shadow", "0400", "telnet", "rkhunter"} {
		if !strings.Contains(text, want) {
			t.Errorf("rules listing missing %q", want)
		}
	}
}
