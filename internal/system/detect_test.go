package system_test

import (
	"testing"

	"github.com/hardenaudit/hardenaudit/internal/system"
	"github.com/hardenaudit/hardenaudit/internal/system/systemtest"
)

func TestGetOSInfo(t *testing.T) {
	fsys := systemtest.NewFS().
		Add("/proc/sys/kernel/osrelease", "6.8.0-45-generic\n", 0444).
		Add("/etc/hostname", "bastion-01\n", 0644).
		Add("/etc/os-release", "NAME=\"Ubuntu\"\nID=ubuntu\nVERSION_ID=\"24.04\"\n", 0644)

	info := system.GetOSInfo(fsys)

	if info.Kernel != "6.8.0-45-generic" {
		t.Errorf("Kernel = %q", info.Kernel)
	}
	if info.Hostname != "bastion-01" {
		t.Errorf("Hostname = %q", info.Hostname)
	}
	if info.Distro != "ubuntu" {
		t.Errorf("Distro = %q, want ubuntu", info.Distro)
	}
	if info.System == "" {
		t.Error("System is empty")
	}
}

func TestGetOSInfoMissingSources(t *testing.T) {
	info := system.GetOSInfo(systemtest.NewFS())

	if info.Distro != "unknown" {
		t.Errorf("Distro = %q, want unknown", info.Distro)
	}
	if info.Kernel != "" {
		t.Errorf("Kernel = %q, want empty", info.Kernel)
	}
}

func TestGetOSInfoQuotedDistro(t *testing.T) {
	tests := []struct {
		name    string
		release string
		want    string
	}{
		{"rhel", "ID=\"rhel\"\n", "rhel"},
		{"centos", "ID=\"centos\"\n", "centos"},
		{"other", "ID=nixos\n", "nixos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := systemtest.NewFS().Add("/etc/os-release", tt.release, 0644)
			if got := system.GetOSInfo(fsys).Distro; got != tt.want {
				t.Errorf("Distro = %q, want %q", got, tt.want)
			}
		})
	}
}
