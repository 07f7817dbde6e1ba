package system

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/errors"
)

// Runner executes external tools on behalf of the checks.
type Runner interface {
	// Run executes name with args, bounded by timeout.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*CommandResult, error)
	// LookPath resolves a binary, returning ErrCommandNotFound when absent.
	LookPath(name string) (string, error)
}

// hostBinPaths are searched when running in a container with the host root mounted.
var hostBinPaths = []string{
	"/usr/sbin",
	"/usr/bin",
	"/sbin",
	"/bin",
}

// ExecRunner runs real commands. Only allowlisted binaries may be executed.
type ExecRunner struct {
	useSudo bool
	allowed map[string]bool

	exec     func(ctx context.Context, timeout time.Duration, parts ...string) (*CommandResult, error)
	lookPath func(name string) (string, error)
	euid     func() int
}

// NewExecRunner creates a runner permitted to execute the given binaries.
// With useSudo set, commands failing on permissions are retried via "sudo -n".
func NewExecRunner(useSudo bool, allowed ...string) *ExecRunner {
	r := &ExecRunner{
		useSudo: useSudo,
		allowed: make(map[string]bool, len(allowed)),

		exec:     RunCommand,
		lookPath: exec.LookPath,
		euid:     os.Geteuid,
	}
	for _, name := range allowed {
		r.allowed[filepath.Base(name)] = true
	}
	return r
}

// Allowed reports whether name may be executed by this runner.
func (r *ExecRunner) Allowed(name string) bool {
	return r.allowed[filepath.Base(name)]
}

// Run executes an allowlisted command, retrying under sudo on permission errors.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*CommandResult, error) {
	if !r.Allowed(name) {
		return nil, errors.Wrap(errors.ErrPermissionDenied, "command '%s' not in allowlist", name)
	}

	bin, err := r.LookPath(name)
	if err != nil {
		return nil, err
	}

	parts := append([]string{bin}, args...)
	result, err := r.exec(ctx, timeout, parts...)
	if !r.useSudo || r.euid() == 0 || result == nil || result.TimedOut {
		return result, err
	}
	if !PermissionRefused(result) {
		return result, err
	}

	if _, lookErr := r.lookPath("sudo"); lookErr != nil {
		return result, err
	}
	return r.exec(ctx, timeout, append([]string{"sudo", "-n"}, parts...)...)
}

// LookPath resolves name on PATH, then under the mounted host root.
func (r *ExecRunner) LookPath(name string) (string, error) {
	if path, err := r.lookPath(name); err == nil {
		return path, nil
	}
	if IsInContainer() {
		for _, dir := range hostBinPaths {
			candidate := HostPath(filepath.Join(dir, name))
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
				return candidate, nil
			}
		}
	}
	return "", errors.Wrap(errors.ErrCommandNotFound, "%s", name)
}

// refusalPhrases are what tools print when they need root. Some write them to
// stdout (rkhunter), others to stderr.
var refusalPhrases = []string{
	"permission denied",
	"you must be root",
	"must be the root user",
	"need to be root",
	"operation not permitted",
	"a password is required",
}

// PermissionRefused reports whether a command refused to run for lack of
// privileges rather than producing a real result.
func PermissionRefused(result *CommandResult) bool {
	if result == nil {
		return false
	}
	out := strings.ToLower(result.Stdout + "\n" + result.Stderr)
	for _, phrase := range refusalPhrases {
		if strings.Contains(out, phrase) {
			return true
		}
	}
	return false
}
