// Package cli: generate.go implements the "realm-bindgen generate" command.
//
// generate is the default command. It orchestrates one generation run per
// template:
//  1. Attach the invocation's debug logger to the context
//  2. Parse and merge every spec file
//  3. Parse the opt-in list, if one was given
//  4. For each template, in command-line order, wait for its load to
//     finish and generate from it
//
// The first failure aborts everything that follows. Files written for
// earlier templates are left in place.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/realm/realm-bindgen/internal/debug"
	"github.com/realm/realm-bindgen/internal/generator"
	"github.com/realm/realm-bindgen/internal/model"
	"github.com/realm/realm-bindgen/internal/spec"
	"github.com/realm/realm-bindgen/internal/templates"
)

// generateFlags holds the flag values for the generate command.
// These are bound to cobra flags in NewGenerateCommand.
type generateFlags struct {
	specs     []string             // --spec: absolute paths, command-line order
	optIn     string               // --opt-in: absolute path, empty when not given
	templates []*templates.Pending // --template: loads started while parsing
	output    string               // --output: absolute output directory
	debug     bool                 // --debug
}

// NewGenerateCommand creates the "generate" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewGenerateCommand(deps Dependencies) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate bindings from API specifications",
		Long: `Parse the API specifications and apply every template to them, writing
the generated files into the output directory.

Templates are applied one after another in the order they are given. Loading
of all templates starts while the arguments are parsed.

Examples:
  realm-bindgen generate -s spec.yml -t typescript.tmpl -o generated/
  realm-bindgen -s spec.yml -s extras.yml --opt-in optin.yml -t a.tmpl -t b.tmpl -o out/`,

		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Run in
		// root.go reports them.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), deps, flags)
		},
	}

	fs := cmd.Flags()
	addSpecFlag(fs, &flags.specs)
	addOptInFlag(fs, &flags.optIn)
	addTemplateFlag(fs, &flags.templates, deps.ImportTemplate)
	addOutputFlag(fs, &flags.output)
	addDebugFlag(fs, &flags.debug)
	markRequired(cmd, "spec", "template", "output")

	return cmd
}

// runGenerate is the main orchestration function for the generate command.
func runGenerate(ctx context.Context, deps Dependencies, flags *generateFlags) error {
	ctx = withDebugLogger(ctx, deps.ErrOut, flags.debug)
	log := debug.FromContext(ctx)

	rawSpec, err := deps.ParseSpecs(ctx, flags.specs)
	if err != nil {
		return model.WrapCLIError("failed to parse specs", err)
	}

	var optIn *spec.OptInList
	if flags.optIn != "" {
		optIn, err = deps.ParseOptInSpec(ctx, flags.optIn)
		if err != nil {
			return model.WrapCLIError("failed to parse opt-in list", err)
		}
	}

	for i, pending := range flags.templates {
		tmpl, err := pending.Wait()
		if err != nil {
			return model.WrapCLIError(fmt.Sprintf("failed to load template %s", pending.Path()), err)
		}
		log.Debug("Applying template", "n", i+1, "of", len(flags.templates), "path", pending.Path())

		err = deps.Generate(ctx, generator.Context{
			RawSpec:    rawSpec,
			OptInSpec:  optIn,
			Template:   tmpl,
			OutputPath: flags.output,
		})
		if err != nil {
			return model.WrapCLIError(fmt.Sprintf("failed to generate from template %s", pending.Path()), err)
		}
	}
	return nil
}

// withDebugLogger attaches the invocation's logger to ctx. Everything that
// runs with the returned context logs through it.
func withDebugLogger(ctx context.Context, w io.Writer, enabled bool) context.Context {
	logger := debug.New(w, enabled)
	logger.Debug("Debugging enabled")
	return debug.WithLogger(ctx, logger)
}
