// cmd/pairwise/main.go
package main

import (
	cmd "github.com/perceptlab/pairwise/internal/commands"
)

// Populated by the release pipeline via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the pairwise CLI application by delegating to the cobra root
// command. It does not take any arguments and does not return a value.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
