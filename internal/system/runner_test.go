package system

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/errors"
)

func TestExecRunnerAllowlist(t *testing.T) {
	r := NewExecRunner(false, "echo", "/usr/sbin/ufw")

	tests := []struct {
		name string
		bin  string
		want bool
	}{
		{"plain name", "echo", true},
		{"path entry normalized", "ufw", true},
		{"absolute path of allowed", "/usr/sbin/ufw", true},
		{"not allowed", "rm", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Allowed(tt.bin); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.bin, got, tt.want)
			}
		})
	}
}

func TestExecRunnerRun(t *testing.T) {
	ctx := context.Background()
	r := NewExecRunner(false, "echo", "nonexistent-cmd-xyz")

	t.Run("allowed command runs", func(t *testing.T) {
		result, err := r.Run(ctx, TimeoutShort, "echo", "ok")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Stdout != "ok\n" {
			t.Errorf("Stdout = %q, want %q", result.Stdout, "ok\n")
		}
	})

	t.Run("disallowed command rejected", func(t *testing.T) {
		_, err := r.Run(ctx, TimeoutShort, "ls")
		if !errors.Is(err, errors.ErrPermissionDenied) {
			t.Errorf("Run() error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := r.Run(ctx, TimeoutShort, "nonexistent-cmd-xyz")
		if !errors.Is(err, errors.ErrCommandNotFound) {
			t.Errorf("Run() error = %v, want ErrCommandNotFound", err)
		}
	})
}

func TestPermissionRefused(t *testing.T) {
	tests := []struct {
		name   string
		result *CommandResult
		want   bool
	}{
		{"ufw stderr", &CommandResult{Stderr: "ERROR: You need to be root to run this script"}, true},
		{"iptables stderr", &CommandResult{Stderr: "iptables: Permission denied (you must be root)"}, true},
		{"not permitted", &CommandResult{Stderr: "Operation not permitted"}, true},
		{"rkhunter stdout", &CommandResult{Stdout: "You must be the root user to run this program."}, true},
		{"rkhunter stderr", &CommandResult{Stderr: "You must be the root user to run this program."}, true},
		{"sudo without password", &CommandResult{Stderr: "sudo: a password is required"}, true},
		{"empty", &CommandResult{}, false},
		{"normal output", &CommandResult{Stdout: "Status: inactive"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PermissionRefused(tt.result); got != tt.want {
				t.Errorf("PermissionRefused() = %v, want %v", got, tt.want)
			}
		})
	}
}

// scriptedRunner returns an ExecRunner whose process layer replies from
// replies keyed by the joined argv, recording every invocation.
func scriptedRunner(useSudo bool, euid int, replies map[string]*CommandResult, calls *[]string) *ExecRunner {
	r := NewExecRunner(useSudo, "rkhunter")
	r.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	r.euid = func() int { return euid }
	r.exec = func(ctx context.Context, timeout time.Duration, parts ...string) (*CommandResult, error) {
		key := strings.Join(parts, " ")
		*calls = append(*calls, key)
		res, ok := replies[key]
		if !ok {
			return &CommandResult{Success: true}, nil
		}
		if !res.Success {
			return res, errors.Wrap(errors.ErrCommandFailed, "%s exited with status %d", parts[0], res.ExitCode)
		}
		return res, nil
	}
	return r
}

func TestExecRunnerSudoRetry(t *testing.T) {
	refusal := &CommandResult{Stdout: "You must be the root user to run this program.\n", ExitCode: 1}
	clean := &CommandResult{Stdout: "0 suspect files\n", Success: true}
	replies := map[string]*CommandResult{
		"/usr/bin/rkhunter --check --sk":         refusal,
		"sudo -n /usr/bin/rkhunter --check --sk": clean,
	}

	t.Run("retries under sudo", func(t *testing.T) {
		var calls []string
		r := scriptedRunner(true, 1000, replies, &calls)

		result, err := r.Run(context.Background(), TimeoutShort, "rkhunter", "--check", "--sk")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Stdout != clean.Stdout {
			t.Errorf("Stdout = %q, want the sudo run's output", result.Stdout)
		}
		if len(calls) != 2 || calls[1] != "sudo -n /usr/bin/rkhunter --check --sk" {
			t.Errorf("calls = %v, want plain run then sudo -n retry", calls)
		}
	})

	t.Run("sudo disabled", func(t *testing.T) {
		var calls []string
		r := scriptedRunner(false, 1000, replies, &calls)

		_, err := r.Run(context.Background(), TimeoutShort, "rkhunter", "--check", "--sk")
		if !errors.Is(err, errors.ErrCommandFailed) {
			t.Errorf("Run() error = %v, want ErrCommandFailed", err)
		}
		if len(calls) != 1 {
			t.Errorf("calls = %v, want no retry", calls)
		}
	})

	t.Run("already root", func(t *testing.T) {
		var calls []string
		r := scriptedRunner(true, 0, replies, &calls)

		_, _ = r.Run(context.Background(), TimeoutShort, "rkhunter", "--check", "--sk")
		if len(calls) != 1 {
			t.Errorf("calls = %v, want no retry as root", calls)
		}
	})

	t.Run("no refusal", func(t *testing.T) {
		var calls []string
		r := scriptedRunner(true, 1000, map[string]*CommandResult{}, &calls)

		if _, err := r.Run(context.Background(), TimeoutShort, "rkhunter", "--check", "--sk"); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(calls) != 1 {
			t.Errorf("calls = %v, want a single run", calls)
		}
	})
}
