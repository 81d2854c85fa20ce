// Command tessy is the build orchestrator's entry point.
package main

import (
	"os"

	"github.com/Miosp/Tessy/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
