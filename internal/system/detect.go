package system

import (
	"os"
	"runtime"
	"strings"
)

// OSInfo describes the audited host.
type OSInfo struct {
	System   string `json:"system"`
	Distro   string `json:"distro"`
	Kernel   string `json:"kernel"`
	Hostname string `json:"hostname"`
}

// GetOSInfo collects host identity from procfs and os-release.
// Missing sources leave the field empty or "unknown"; it never fails.
func GetOSInfo(fsys FileSystem) *OSInfo {
	info := &OSInfo{
		System: runtime.GOOS,
		Distro: "unknown",
	}

	if data, err := fsys.ReadFile("/proc/sys/kernel/osrelease"); err == nil {
		info.Kernel = strings.TrimSpace(string(data))
	}

	if data, err := fsys.ReadFile("/etc/hostname"); err == nil && len(strings.TrimSpace(string(data))) > 0 {
		info.Hostname = strings.TrimSpace(string(data))
	} else if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	if data, err := fsys.ReadFile("/etc/os-release"); err == nil {
		info.Distro = parseOSRelease(string(data))
	}

	return info
}

func parseOSRelease(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "ID=") {
			return normalizeDistro(strings.Trim(strings.TrimPrefix(line, "ID="), "\""))
		}
	}
	return "unknown"
}

func normalizeDistro(distro string) string {
	distro = strings.ToLower(distro)
	switch {
	case strings.Contains(distro, "ubuntu"):
		return "ubuntu"
	case strings.Contains(distro, "debian"):
		return "debian"
	case strings.Contains(distro, "centos"):
		return "centos"
	case strings.Contains(distro, "rhel"), strings.Contains(distro, "redhat"):
		return "rhel"
	case strings.Contains(distro, "fedora"):
		return "fedora"
	case strings.Contains(distro, "arch"):
		return "arch"
	case strings.Contains(distro, "alpine"):
		return "alpine"
	case distro == "":
		return "unknown"
	default:
		return distro
	}
}
