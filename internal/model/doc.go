// Package model defines the shared error and exit-code types for the
// realm-bindgen CLI.
//
// This package contains pure data structures with no external dependencies.
// It defines the process exit codes (ExitCode), the closed set of failure
// kinds (ErrorKind) and a custom error type (CLIError) that carries both,
// so the CLI layer can report every failure exhaustively and translate it
// into a deterministic OS exit code.
package model
