// Package mcp exposes the audit as Model Context Protocol tools over stdio.
package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hardenaudit/hardenaudit/internal/audit"
	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/output"
	"github.com/hardenaudit/hardenaudit/internal/util"
)

const (
	ToolRunAudit  = "run_hardening_audit"
	ToolListRules = "list_rules"
)

// OrchestratorFactory builds the orchestrator for one tool call.
type OrchestratorFactory func(cfg *config.Config) *audit.Orchestrator

// Server wraps an MCP server whose tools run audits with a fixed config.
type Server struct {
	mcpServer *server.MCPServer
	cfg       *config.Config
	factory   OrchestratorFactory
	logger    *zap.Logger

	// audits write to a shared report path; run them one at a time
	mu sync.Mutex
}

// NewServer registers the audit tools.
func NewServer(cfg *config.Config, version string) *Server {
	s := &Server{
		cfg: cfg,
		factory: func(c *config.Config) *audit.Orchestrator {
			return audit.FromConfig(c, io.Discard)
		},
		logger: util.GetLogger().Named("mcp"),
	}

	s.mcpServer = server.NewMCPServer("hardenaudit", version,
		server.WithToolCapabilities(false),
	)

	s.mcpServer.AddTool(mcp.NewTool(ToolRunAudit,
		mcp.WithDescription("Run the Linux hardening audit (firewall, SSH, file permissions, services, rootkits) and return the compliance score and full report"),
		mcp.WithString("report_path",
			mcp.Description("Report file name or path inside the configured report directory (defaults to the configured path)"),
		),
	), s.handleRunAudit)

	s.mcpServer.AddTool(mcp.NewTool(ToolListRules,
		mcp.WithDescription("List the rules the audit evaluates and the credit each is worth"),
	), s.handleListRules)

	return s
}

// SetFactory replaces how orchestrators are built.
func (s *Server) SetFactory(f OrchestratorFactory) {
	s.factory = f
}

// Serve blocks serving MCP over stdin/stdout.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleRunAudit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := *s.cfg
	path, err := ReportPathWithin(s.cfg.ReportPath, req.GetString("report_path", ""))
	if err != nil {
		s.logger.Warn("Rejected report path", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg.ReportPath = path

	result, err := s.factory(&cfg).RunAudit(ctx)
	if err != nil {
		s.logger.Warn("Audit failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("audit failed: %v", err)), nil
	}

	var sb bytes.Buffer
	sb.WriteString(output.NewFormatter(false).ToText(result))
	sb.WriteString("\n")

	reportText, err := os.ReadFile(result.ReportPath)
	if err != nil {
		fmt.Fprintf(&sb, "(report file unreadable: %v)\n", err)
	} else {
		sb.Write(reportText)
	}

	s.logger.Info("Audit served",
		zap.String("run_id", result.RunID),
		zap.Float64("percentage", result.Verdict.Percentage))
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleListRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb bytes.Buffer
	output.NewFormatter(false).PrintRules(&sb, s.cfg)
	return mcp.NewToolResultText(sb.String()), nil
}

// ReportPathWithin resolves a client-supplied report path. Relative paths are
// taken from the directory of the configured report; the result must stay in
// that directory and must not name a symlink or a non-regular file, since the
// report is truncated on every run.
func ReportPathWithin(configured, requested string) (string, error) {
	if requested == "" {
		return configured, nil
	}

	dir, err := filepath.Abs(filepath.Dir(configured))
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, "resolve report directory: %v", err)
	}
	candidate := requested
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(dir, candidate)
	}
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(resolveExisting(dir), resolveExisting(filepath.Dir(candidate)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrap(errors.ErrInvalidInput, "report_path %s is outside %s", requested, dir)
	}

	if info, err := os.Lstat(candidate); err == nil && !info.Mode().IsRegular() {
		return "", errors.Wrap(errors.ErrInvalidInput, "report_path %s is not a regular file", requested)
	}
	return candidate, nil
}

// resolveExisting follows symlinks in the longest existing prefix of path.
func resolveExisting(path string) string {
	var tail []string
	for p := path; ; p = filepath.Dir(p) {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return path
		}
		tail = append([]string{filepath.Base(p)}, tail...)
	}
}
