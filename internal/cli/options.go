package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/realm/realm-bindgen/internal/templates"
)

// The option values below implement pflag.Value. Validation runs inside
// Set, which pflag calls once per occurrence while parsing arguments, so
// invalid paths are rejected before any command runs. pflag reports a Set
// failure through the command's flag error func.

// existingFileSliceValue appends one existing file per occurrence,
// keeping command-line order and duplicates.
type existingFileSliceValue struct {
	paths *[]string
}

func (v *existingFileSliceValue) Set(s string) error {
	path, err := ResolveExistingFilePath(s)
	if err != nil {
		return err
	}
	*v.paths = append(*v.paths, path)
	return nil
}

func (v *existingFileSliceValue) Type() string { return "path" }

func (v *existingFileSliceValue) String() string { return strings.Join(*v.paths, ",") }

// existingFileValue holds a single existing file. The last occurrence wins.
type existingFileValue struct {
	path *string
}

func (v *existingFileValue) Set(s string) error {
	path, err := ResolveExistingFilePath(s)
	if err != nil {
		return err
	}
	*v.path = path
	return nil
}

func (v *existingFileValue) Type() string { return "path" }

func (v *existingFileValue) String() string { return *v.path }

// pathValue holds a single normalized path that need not exist. The last
// occurrence wins.
type pathValue struct {
	path *string
}

func (v *pathValue) Set(s string) error {
	*v.path = ResolvePath(s)
	return nil
}

func (v *pathValue) Type() string { return "path" }

func (v *pathValue) String() string { return *v.path }

// templateSliceValue starts loading a template for every occurrence and
// appends the pending load. Loads of several templates therefore overlap
// with each other and with the rest of argument parsing.
type templateSliceValue struct {
	pending *[]*templates.Pending
	load    templates.Loader
}

func (v *templateSliceValue) Set(s string) error {
	path, err := ResolveExistingFilePath(s)
	if err != nil {
		return err
	}
	*v.pending = append(*v.pending, templates.Start(path, v.load))
	return nil
}

func (v *templateSliceValue) Type() string { return "path" }

func (v *templateSliceValue) String() string {
	paths := make([]string, 0, len(*v.pending))
	for _, p := range *v.pending {
		paths = append(paths, p.Path())
	}
	return strings.Join(paths, ",")
}

func addSpecFlag(fs *pflag.FlagSet, paths *[]string) {
	fs.VarP(&existingFileSliceValue{paths: paths}, "spec", "s",
		"Path of the API specification (repeatable, later files extend earlier ones)")
}

func addOptInFlag(fs *pflag.FlagSet, path *string) {
	fs.Var(&existingFileValue{path: path}, "opt-in", "Path of the 'opt-in list' specification")
}

func addTemplateFlag(fs *pflag.FlagSet, pending *[]*templates.Pending, load templates.Loader) {
	fs.VarP(&templateSliceValue{pending: pending, load: load}, "template", "t",
		"Path to template source file to apply when generating (repeatable, applied in order)")
}

func addOutputFlag(fs *pflag.FlagSet, path *string) {
	fs.VarP(&pathValue{path: path}, "output", "o", "Path of a directory to write the binding")
}

func addDebugFlag(fs *pflag.FlagSet, enabled *bool) {
	fs.BoolVarP(enabled, "debug", "d", false, "Turn on debug printing")
}

// markRequired marks flags that must be given at least once. cobra checks
// them after parsing and before RunE.
func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			// Only fails for flags that were never registered.
			panic(err)
		}
	}
}
