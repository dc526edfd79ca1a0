package main

import (
	"context"
	"os"

	"laravel-api-forge/cmd" // Import the cmd package which contains the CLI commands and execution logic
	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/logger"
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// forge scaffolds Laravel API projects:
//   - `forge new <name>` checks the PHP toolchain, asks for optional features, runs the
//     Laravel installer and applies each configuration step, committing after every one
//   - `forge self-update` replaces this binary from GitHub releases, keeping one backup
//     for `--rollback`
//
// Error handling strategy:
//   - The first failure aborts; commits already made in the new project are kept
//   - Fatal errors are printed once, here, and mapped to the exit status
//     (2 for usage errors, 1 otherwise)
func main() {
	if err := cmd.Execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.Error("❌ %v\n", err)
		os.Exit(apperr.ExitCode(err))
	}
}
