package model

import (
	"errors"
	"fmt"
	"io"
)

// ExitCode defines the CLI exit codes. Scripts and CI systems can only
// distinguish success from failure: every reported failure maps to
// ExitFailure, regardless of how many templates were generated before it.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates any reported failure: invalid arguments,
	// specification errors, opt-in errors, template or generation errors.
	ExitFailure ExitCode = 1
)

// ErrorKind classifies a failure for the error reporter. The set is closed;
// the reporter switches over every value.
type ErrorKind int

const (
	// KindGeneration covers template resolution, code generation and any
	// other failure that does not carry its own rendering.
	KindGeneration ErrorKind = iota

	// KindArgument covers malformed or missing command-line input, detected
	// while parsing flags and before any command action runs.
	KindArgument

	// KindSpecification covers structured errors from the spec and opt-in
	// parsers. Such errors know how to print themselves.
	KindSpecification
)

// String returns the human-readable name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindArgument:
		return "argument"
	case KindSpecification:
		return "specification"
	case KindGeneration:
		return "generation"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// SpecificationError is implemented by structured, self-describing errors
// produced while parsing specifications or opt-in lists. Print renders the
// error with enough file/line/field context to locate the offending
// fragment.
type SpecificationError interface {
	error
	Print(w io.Writer)
}

// CLIError is a custom error type that carries an exit code and a kind.
// This allows the CLI layer to translate domain errors into a diagnostic
// print plus an appropriate process exit code.
type CLIError struct {
	// Kind selects how the error is reported.
	Kind ErrorKind

	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewArgumentError wraps a flag-parsing or usage failure.
func NewArgumentError(err error) *CLIError {
	return &CLIError{Kind: KindArgument, Code: ExitFailure, Err: err}
}

// WrapCLIError wraps err with a message, classifying it with Classify.
func WrapCLIError(message string, err error) *CLIError {
	return &CLIError{Kind: Classify(err), Code: ExitFailure, Message: message, Err: err}
}

// Classify returns the kind of err. A CLIError keeps its own kind, any
// SpecificationError in the chain is a specification failure, and
// everything else is a generation failure.
func Classify(err error) ErrorKind {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Kind
	}
	var specErr SpecificationError
	if errors.As(err, &specErr) {
		return KindSpecification
	}
	return KindGeneration
}
