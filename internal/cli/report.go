package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/gookit/color"

	"github.com/realm/realm-bindgen/internal/model"
)

// report prints a failure to w according to its kind:
//   - specification errors print themselves, with file and line context
//   - argument errors print the message and point at the command's help
//   - generation errors print the cause with %+v, which includes the
//     stack trace of github.com/pkg/errors errors
//
// commandPath is the full name of the command that failed, used in the
// usage hint.
func report(w io.Writer, commandPath string, err error) {
	if err == nil {
		return
	}
	marker := color.Red.Sprint("ERROR")

	switch model.Classify(err) {
	case model.KindSpecification:
		var specErr model.SpecificationError
		if errors.As(err, &specErr) {
			specErr.Print(w)
			return
		}
		fmt.Fprintf(w, "%s %v\n", marker, err)

	case model.KindArgument:
		fmt.Fprintf(w, "%s %v\n", marker, err)
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", commandPath)

	case model.KindGeneration:
		var cliErr *model.CLIError
		switch {
		case !errors.As(err, &cliErr) || cliErr.Err == nil:
			fmt.Fprintf(w, "%s %+v\n", marker, err)
		case cliErr.Message == "":
			fmt.Fprintf(w, "%s %+v\n", marker, cliErr.Err)
		default:
			fmt.Fprintf(w, "%s %s: %+v\n", marker, cliErr.Message, cliErr.Err)
		}
	}
}
