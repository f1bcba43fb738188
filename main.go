// ./main.go
package main

import (
	"github.com/emelas-tomoro/llm-linter/cmd"
)

// main is the entry point for the llm-linter application.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
