// Package system provides command execution and host file access for the checks.
// When running in a container with the host root mounted at /host, paths are
// automatically prefixed so the host, not the container, is audited.
package system

import (
	"io/fs"
	"os"
	"strings"
)

// hostRoot is set to "/host" when running in container with host mounts
var hostRoot = ""

func init() {
	if _, err := os.Stat("/host/proc"); err == nil {
		hostRoot = "/host"
	}
}

// HostPath returns path with /host prefix if in container
func HostPath(path string) string {
	if hostRoot == "" || strings.HasPrefix(path, hostRoot+"/") {
		return path
	}
	return hostRoot + path
}

// IsInContainer returns true if running in containerized environment
func IsInContainer() bool {
	return hostRoot != ""
}

// FileSystem is the read-only view of the host the checks inspect.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// OSFileSystem reads the real host filesystem, honoring HostPath.
type OSFileSystem struct{}

// Stat returns file info for path on the host.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(HostPath(path))
}

// ReadFile reads path on the host.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(HostPath(path))
}
