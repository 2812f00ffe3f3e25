// Package main is the entry point for the realm-bindgen CLI.
//
// realm-bindgen turns API specification documents into SDK bindings by
// applying templates to them. It delegates all functionality to the
// internal/cli package, which defines cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release build. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/realm/realm-bindgen/internal/cli"
)

// version, commit, and date are set at build time via ldflags. They
// provide binary identification for the --version flag output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Create the root command wired to the real parser, template loader
	// and generator, then execute it. Execute handles error reporting and
	// exit codes.
	rootCmd := cli.NewRootCommand(cli.DefaultDependencies())
	cli.Execute(rootCmd)
}
