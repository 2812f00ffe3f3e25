package spec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
)

// Issue is a single problem found in a specification or opt-in document.
type Issue struct {
	// Path is the file the problem was found in. Empty when the problem
	// cannot be attributed to a file.
	Path string

	// Line is the 1-based line in Path, or 0 when unknown.
	Line int

	// Pointer is the JSON pointer (RFC 6901) of the offending value,
	// e.g. "/classes/Realm/base". Empty for whole-document problems.
	Pointer string

	// Message describes what is wrong.
	Message string
}

// String formats the issue as "path:line: pointer: message", leaving out
// the parts that are unknown.
func (i Issue) String() string {
	var b strings.Builder
	if i.Path != "" {
		b.WriteString(i.Path)
		if i.Line > 0 {
			b.WriteString(":")
			b.WriteString(strconv.Itoa(i.Line))
		}
		b.WriteString(": ")
	}
	if i.Pointer != "" {
		b.WriteString(i.Pointer)
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// InvalidSpecError reports every issue found while parsing specification
// or opt-in documents. It satisfies model.SpecificationError.
type InvalidSpecError struct {
	// Summary is the one-line headline, e.g. "Invalid spec".
	Summary string

	Issues []Issue
}

func newInvalidSpecError(summary string, issues ...Issue) *InvalidSpecError {
	return &InvalidSpecError{Summary: summary, Issues: issues}
}

// Error satisfies the error interface.
func (e *InvalidSpecError) Error() string {
	switch len(e.Issues) {
	case 0:
		return strings.ToLower(e.Summary)
	case 1:
		return fmt.Sprintf("%s: %s", strings.ToLower(e.Summary), e.Issues[0])
	default:
		return fmt.Sprintf("%s: %s (and %d more)", strings.ToLower(e.Summary), e.Issues[0], len(e.Issues)-1)
	}
}

// Print renders the error for humans: a red headline followed by one
// line per issue.
func (e *InvalidSpecError) Print(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", color.Red.Sprint("ERROR"), e.Summary)
	for _, issue := range e.Issues {
		fmt.Fprintf(w, "  %s %s\n", color.Red.Sprint("-"), issue)
	}
}
