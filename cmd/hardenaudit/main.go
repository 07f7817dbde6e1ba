package main

import (
	"github.com/hardenaudit/hardenaudit/cmd/hardenaudit/commands"
)

// Populated via -ldflags at release time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	commands.SetBuildInfo(version, commit, date)
	commands.Execute()
}
