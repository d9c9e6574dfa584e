// Package main is the entry point for the muse CLI.
//
// Usage:
//
//	muse [flags] <command> [subcommand] [args]
//
// Commands:
//
//	think      - Staged reasoning chain over a query
//	chain      - Multi-step execution chain for a task
//	tools      - Tool matching and the registered tool set (analyze, list)
//	plan       - Strategic plan for a goal
//	adapt      - Adaptation analysis for a changing situation
//	history    - Inspect and export recorded reasoning history
//	info       - Agent capability and status report
//	demo       - Self-contained walkthrough on an in-memory database
//	config     - Configuration management (contexts)
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/muse/cmd/muse/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
