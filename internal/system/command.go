package system

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/errors"
)

// CommandResult represents the result of a command execution
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Success  bool
	TimedOut bool
}

const (
	TimeoutShort    = 5 * time.Second
	TimeoutVeryLong = 120 * time.Second
)

// RunCommand executes a command with timeout.
//
// The result is non-nil whenever a command was given, so callers can inspect
// partial output. The error is classified: ErrCommandNotFound when the binary
// cannot be started, ErrTimeoutExceeded on deadline, ErrCommandFailed on a
// non-zero exit.
func RunCommand(ctx context.Context, timeout time.Duration, cmdParts ...string) (*CommandResult, error) {
	if len(cmdParts) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "no command specified")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cmdParts[0], cmdParts[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Success:  err == nil,
		TimedOut: ctx.Err() == context.DeadlineExceeded,
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	switch {
	case result.TimedOut:
		result.ExitCode = -1
		return result, errors.Wrap(errors.ErrTimeoutExceeded, "%s timed out after %s", cmdParts[0], timeout)
	case stderrors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, errors.Wrap(errors.ErrCommandFailed, "%s exited with status %d", cmdParts[0], result.ExitCode)
	case stderrors.Is(err, exec.ErrNotFound):
		result.ExitCode = -1
		return result, errors.Wrap(errors.ErrCommandNotFound, "%s", cmdParts[0])
	default:
		result.ExitCode = -1
		return result, errors.Wrap(err, "%s", cmdParts[0])
	}
}
