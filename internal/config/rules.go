package config

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SSHRule awards Credit when Directive appears verbatim in sshd_config.
//
// Matching is a plain substring test: a commented-out "#PermitRootLogin no"
// still matches, "PermitRootLogin  no" (two spaces) does not.
type SSHRule struct {
	Directive string  `yaml:"directive"`
	Credit    float64 `yaml:"credit"`
	OK        string  `yaml:"ok"`
	Warn      string  `yaml:"warn"`
}

// Satisfied reports whether the directive is present in content.
func (r SSHRule) Satisfied(content string) bool {
	return strings.Contains(content, r.Directive)
}

// PermissionRule awards Credit when Path has exactly Mode.
type PermissionRule struct {
	Path   string  `yaml:"path"`
	Mode   Mode    `yaml:"mode"`
	Credit float64 `yaml:"credit"`
}

// Matches compares the unix permission bits of mode for exact equality.
func (r PermissionRule) Matches(mode fs.FileMode) bool {
	return UnixMode(mode) == r.Mode
}

// ServiceRule flags running units whose listing line contains Pattern.
// Case-sensitive, as systemctl renders unit names.
type ServiceRule struct {
	Pattern  string `yaml:"pattern"`
	Protocol string `yaml:"protocol"`
}

// Matches reports whether a systemctl listing line trips this rule.
func (r ServiceRule) Matches(line string) bool {
	return r.Pattern != "" && strings.Contains(line, r.Pattern)
}

// Mode is a unix permission value (including setuid/setgid/sticky), written
// in YAML as an octal string such as "0644".
type Mode uint32

// String renders the mode as four octal digits.
func (m Mode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

// UnmarshalYAML accepts "0644", "644" or "0o644".
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimPrefix(strings.TrimSpace(value.Value), "0o")
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid octal mode %q: %w", value.Value, err)
	}
	*m = Mode(v)
	return nil
}

// MarshalYAML writes the mode back as an octal string.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnixMode converts a Go FileMode into classic unix permission bits.
func UnixMode(mode fs.FileMode) Mode {
	m := Mode(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		m |= 04000
	}
	if mode&fs.ModeSetgid != 0 {
		m |= 02000
	}
	if mode&fs.ModeSticky != 0 {
		m |= 01000
	}
	return m
}

// DefaultSSHRules returns the two sshd hardening directives.
func DefaultSSHRules() []SSHRule {
	return []SSHRule{
		{
			Directive: "PermitRootLogin no",
			Credit:    0.5,
			OK:        "Root login via SSH is disabled.",
			Warn:      "Root login via SSH is allowed.",
		},
		{
			Directive: "PasswordAuthentication no",
			Credit:    0.5,
			OK:        "Password authentication is disabled.",
			Warn:      "Password authentication is enabled.",
		},
	}
}

// DefaultPermissionRules returns the expected modes of the account databases.
func DefaultPermissionRules() []PermissionRule {
	return []PermissionRule{
		{Path: "/etc/passwd", Mode: 0644, Credit: 0.5},
		{Path: "/etc/shadow", Mode: 0400, Credit: 0.5},
	}
}

// DefaultServiceDenylist returns the legacy cleartext protocols.
func DefaultServiceDenylist() []ServiceRule {
	return []ServiceRule{
		{Pattern: "telnet", Protocol: "Telnet"},
		{Pattern: "ftp", Protocol: "FTP"},
		{Pattern: "rsh", Protocol: "RSH"},
	}
}
