package main

import (
	"os"

	"github.com/roach88/hqd/internal/cli"
)

func main() {
	// Commands render their own error output; main only maps the exit code.
	if err := cli.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
