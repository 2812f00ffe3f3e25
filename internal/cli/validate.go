// Package cli: validate.go implements the "realm-bindgen validate" command.
//
// validate parses and merges the given spec files exactly like generate
// does, discards the result, and reports whether the specs are consistent.
// No templates are loaded and nothing is written to disk.
package cli

import (
	"context"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/realm/realm-bindgen/internal/model"
)

// validateFlags holds the flag values for the validate command.
type validateFlags struct {
	specs []string
	debug bool
}

// NewValidateCommand creates the "validate" cobra command. It accepts
// only --spec and --debug.
func NewValidateCommand(deps Dependencies) *cobra.Command {
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate API specifications without generating",
		Long: `Parse and merge the API specifications, reporting every problem found.
Nothing is generated.

Examples:
  realm-bindgen validate -s spec.yml
  realm-bindgen validate -s spec.yml -s extras.yml --debug`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), deps, flags)
		},
	}

	fs := cmd.Flags()
	addSpecFlag(fs, &flags.specs)
	addDebugFlag(fs, &flags.debug)
	markRequired(cmd, "spec")

	return cmd
}

// runValidate parses the specs and discards the result. Parsing is the
// validation.
func runValidate(ctx context.Context, deps Dependencies, flags *validateFlags) error {
	ctx = withDebugLogger(ctx, deps.ErrOut, flags.debug)

	if _, err := deps.ParseSpecs(ctx, flags.specs); err != nil {
		return model.WrapCLIError("failed to parse specs", err)
	}

	fmt.Fprintln(deps.Out, color.Green.Sprint("Validation passed!"))
	return nil
}
