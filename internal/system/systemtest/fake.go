// Package systemtest provides in-memory Runner and FileSystem fakes so checks
// can be exercised without touching the real host.
package systemtest

import (
	"context"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/system"
)

// Response is a canned outcome for one command line.
type Response struct {
	Result *system.CommandResult
	Err    error
}

// Runner is a scripted system.Runner. Commands are keyed by their space-joined
// argv ("ufw status"). Binaries not in Installed are reported missing.
type Runner struct {
	mu        sync.Mutex
	Installed map[string]bool
	Responses map[string]Response
	Calls     []string
}

// NewRunner returns a Runner with the given binaries installed.
func NewRunner(installed ...string) *Runner {
	r := &Runner{
		Installed: make(map[string]bool),
		Responses: make(map[string]Response),
	}
	for _, name := range installed {
		r.Installed[name] = true
	}
	return r
}

// Succeed scripts a zero-exit response with the given stdout.
func (r *Runner) Succeed(stdout string, argv ...string) *Runner {
	r.Responses[strings.Join(argv, " ")] = Response{
		Result: &system.CommandResult{Stdout: stdout, Success: true},
	}
	return r
}

// Fail scripts a non-zero exit with the given stdout.
func (r *Runner) Fail(exitCode int, stdout string, argv ...string) *Runner {
	r.Responses[strings.Join(argv, " ")] = Response{
		Result: &system.CommandResult{Stdout: stdout, ExitCode: exitCode},
		Err:    errors.Wrap(errors.ErrCommandFailed, "%s exited with status %d", argv[0], exitCode),
	}
	return r
}

// TimeOut scripts a deadline-exceeded response.
func (r *Runner) TimeOut(argv ...string) *Runner {
	r.Responses[strings.Join(argv, " ")] = Response{
		Result: &system.CommandResult{ExitCode: -1, TimedOut: true},
		Err:    errors.Wrap(errors.ErrTimeoutExceeded, "%s timed out", argv[0]),
	}
	return r
}

// Run returns the scripted response for name+args.
func (r *Runner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*system.CommandResult, error) {
	key := strings.Join(append([]string{name}, args...), " ")

	r.mu.Lock()
	r.Calls = append(r.Calls, key)
	installed := r.Installed[name]
	resp, ok := r.Responses[key]
	r.mu.Unlock()

	if !installed {
		return nil, errors.Wrap(errors.ErrCommandNotFound, "%s", name)
	}
	if err := ctx.Err(); err != nil {
		return &system.CommandResult{ExitCode: -1, TimedOut: true}, errors.Wrap(errors.ErrTimeoutExceeded, "%s", name)
	}
	if !ok {
		return &system.CommandResult{Success: true}, nil
	}
	return resp.Result, resp.Err
}

// LookPath reports installed binaries under /usr/sbin.
func (r *Runner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Installed[name] {
		return "/usr/sbin/" + name, nil
	}
	return "", errors.Wrap(errors.ErrCommandNotFound, "%s", name)
}

// Called reports whether the given command line was run.
func (r *Runner) Called(argv ...string) bool {
	key := strings.Join(argv, " ")
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Calls {
		if c == key {
			return true
		}
	}
	return false
}

// FS is an in-memory system.FileSystem.
type FS struct {
	Files map[string]File
}

// File is one entry of FS.
type File struct {
	Data []byte
	Mode fs.FileMode
	Err  error
}

// NewFS returns an empty FS.
func NewFS() *FS {
	return &FS{Files: make(map[string]File)}
}

// Add stores a file with the given content and mode.
func (f *FS) Add(path string, data string, mode fs.FileMode) *FS {
	f.Files[path] = File{Data: []byte(data), Mode: mode}
	return f
}

// Deny makes every access to path fail with fs.ErrPermission.
func (f *FS) Deny(path string) *FS {
	f.Files[path] = File{Err: fs.ErrPermission}
	return f
}

// Stat implements system.FileSystem.
func (f *FS) Stat(path string) (fs.FileInfo, error) {
	file, ok := f.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	if file.Err != nil {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: file.Err}
	}
	return fileInfo{name: path, size: int64(len(file.Data)), mode: file.Mode}, nil
}

// ReadFile implements system.FileSystem.
func (f *FS) ReadFile(path string) ([]byte, error) {
	file, ok := f.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.Err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: file.Err}
	}
	return file.Data, nil
}

type fileInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fileInfo) Sys() any           { return nil }
