// Package cli implements the cobra-based CLI commands for realm-bindgen.
//
// Each subcommand (generate, validate) is defined in its own file within
// this package. This file defines the root command, the collaborators the
// commands call into, and the translation of failures into exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/realm/realm-bindgen/internal/generator"
	"github.com/realm/realm-bindgen/internal/model"
	"github.com/realm/realm-bindgen/internal/spec"
	"github.com/realm/realm-bindgen/internal/templates"
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// defaultCommand runs when no subcommand is named.
const defaultCommand = "generate"

// Dependencies are the collaborators the commands call into. Tests replace
// them with fakes; DefaultDependencies returns the real ones.
type Dependencies struct {
	// Out receives regular output, ErrOut diagnostics and debug logs.
	Out    io.Writer
	ErrOut io.Writer

	ParseSpecs     func(ctx context.Context, paths []string) (*spec.Spec, error)
	ParseOptInSpec func(ctx context.Context, path string) (*spec.OptInList, error)

	// ImportTemplate is started once per --template occurrence, while
	// arguments are still being parsed.
	ImportTemplate templates.Loader

	Generate func(ctx context.Context, gen generator.Context) error
}

// DefaultDependencies wires the commands to the real parser, template
// loader and generator, writing to the process's standard streams.
func DefaultDependencies() Dependencies {
	return Dependencies{
		Out:            os.Stdout,
		ErrOut:         os.Stderr,
		ParseSpecs:     spec.ParseSpecs,
		ParseOptInSpec: spec.ParseOptInSpec,
		ImportTemplate: templates.Import,
		Generate:       generator.Generate,
	}
}

// withDefaults fills every unset field from DefaultDependencies.
func (d Dependencies) withDefaults() Dependencies {
	def := DefaultDependencies()
	if d.Out == nil {
		d.Out = def.Out
	}
	if d.ErrOut == nil {
		d.ErrOut = def.ErrOut
	}
	if d.ParseSpecs == nil {
		d.ParseSpecs = def.ParseSpecs
	}
	if d.ParseOptInSpec == nil {
		d.ParseOptInSpec = def.ParseOptInSpec
	}
	if d.ImportTemplate == nil {
		d.ImportTemplate = def.ImportTemplate
	}
	if d.Generate == nil {
		d.Generate = def.Generate
	}
	return d
}

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action. "generate" is the
// default subcommand: Run prepends it when no subcommand is named.
func NewRootCommand(deps Dependencies) *cobra.Command {
	deps = deps.withDefaults()

	rootCmd := &cobra.Command{
		Use:   "realm-bindgen",
		Short: "Generate SDK bindings from API specifications",
		Long: `realm-bindgen reads one or more API specification documents (YAML, JSON
or JSON with comments), optionally an opt-in list, and applies templates
to them to produce source-code bindings.

"generate" is the default command.

Examples:
  realm-bindgen -s spec.yml -t typescript.tmpl -o generated/
  realm-bindgen generate -s spec.yml -s extras.yml --opt-in optin.yml -t go.tmpl -o gen/
  realm-bindgen validate -s spec.yml -s extras.yml`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Run reports them.
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}
	rootCmd.SetOut(deps.Out)
	rootCmd.SetErr(deps.ErrOut)

	// Flag errors include values rejected by Set (e.g. a missing spec
	// file). Subcommands inherit this func.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return model.NewArgumentError(err)
	})

	rootCmd.AddCommand(NewGenerateCommand(deps))
	rootCmd.AddCommand(NewValidateCommand(deps))

	return rootCmd
}

// Execute runs the root command with the process arguments and exits with
// the resulting exit code. This is the main entry point called from
// main.go.
func Execute(rootCmd *cobra.Command) {
	os.Exit(int(Run(context.Background(), rootCmd, os.Args[1:])))
}

// Run executes rootCmd with args, reports any failure to the command's
// error stream and returns the exit code.
//
// Errors returned by commands are *model.CLIError values carrying their
// kind. Any other error comes from cobra itself (unknown command, missing
// required flag, unexpected argument) and is an argument error.
func Run(ctx context.Context, rootCmd *cobra.Command, args []string) model.ExitCode {
	rootCmd.SetArgs(withDefaultCommand(rootCmd, args))

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return model.ExitSuccess
	}

	var cliErr *model.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = model.NewArgumentError(err)
	}
	if cmd == nil {
		cmd = rootCmd
	}
	report(rootCmd.ErrOrStderr(), cmd.CommandPath(), cliErr)
	return cliErr.Code
}

// withDefaultCommand prepends the default command unless args already
// start with a subcommand, help, completion, or a help or version flag.
func withDefaultCommand(rootCmd *cobra.Command, args []string) []string {
	if len(args) > 0 {
		switch args[0] {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd,
			"-h", "--help", "-v", "--version":
			return args
		}
		for _, c := range rootCmd.Commands() {
			if c.Name() == args[0] || c.HasAlias(args[0]) {
				return args
			}
		}
	}
	return append([]string{defaultCommand}, args...)
}
