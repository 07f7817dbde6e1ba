package util

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the per-user config file written by init-config.
const ConfigFileName = ".hardenaudit.yaml"

// GetConfigPath returns where init-config writes the user config.
// Root gets the system-wide location.
func GetConfigPath() string {
	if os.Geteuid() == 0 {
		return "/etc/hardenaudit/config.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(home, ConfigFileName)
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
