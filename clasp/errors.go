package clasp

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a problem found while parsing a command line. Kinds are
// stable strings so callers can switch on them or map them to exit codes.
type ErrorKind string

const (
	// Lexical kinds
	ErrorKindMissingClosingQuote ErrorKind = "missing_closing_quote"
	ErrorKindEmptyOptionName     ErrorKind = "empty_option_name"

	// Resolution and cardinality kinds
	ErrorKindUnknownOption         ErrorKind = "unknown_option"
	ErrorKindMissingRequiredOption ErrorKind = "missing_required_option"
	ErrorKindUnexpectedAssignment  ErrorKind = "unexpected_assignment"
	ErrorKindIllegalCardinality    ErrorKind = "illegal_cardinality"
	ErrorKindMissingValue          ErrorKind = "missing_value"
	ErrorKindAssignmentToNonValue  ErrorKind = "assignment_to_non_value_option"
	ErrorKindOptionProhibited      ErrorKind = "option_prohibited"

	// Value kinds
	ErrorKindOverflow      ErrorKind = "overflow"
	ErrorKindInvalidFormat ErrorKind = "invalid_format"
	ErrorKindInvalidValue  ErrorKind = "invalid_value"

	// Input kinds
	ErrorKindFileNotFound ErrorKind = "file_not_found"

	// Fallback kind for conditions that fit no other class
	ErrorKindUnknown ErrorKind = "unknown_error"
)

// ErrorInfo describes a single problem found during a parse run. Errors
// accumulate on the result; none of them aborts the run.
type ErrorInfo struct {
	Kind    ErrorKind
	Message string
	Option  string // canonical name of the associated option, if any
	File    string // source file for option-file input, empty for direct input
	Line    int    // 1-based line within File, 0 for direct input
}

// Error implements the error interface.
func (e *ErrorInfo) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s (in %s, line %d)", e.Message, e.File, e.Line)
	}
	return e.Message
}

// Is reports whether target matches this error. Two ErrorInfo values match
// when kind, message and option name are equal, so errors.Is can assert on
// exact parse outcomes.
func (e *ErrorInfo) Is(target error) bool {
	t, ok := target.(*ErrorInfo)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message && e.Option == t.Option
}

// ErrorList is the ordered collection of problems from one parse run.
type ErrorList []*ErrorInfo

// Error implements the error interface by joining all messages.
func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l))
	for _, e := range l {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// HasKind reports whether any accumulated error has the given kind.
func (l ErrorList) HasKind(kind ErrorKind) bool {
	for _, e := range l {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// OfKind returns the accumulated errors of the given kind, in order.
func (l ErrorList) OfKind(kind ErrorKind) []*ErrorInfo {
	var out []*ErrorInfo
	for _, e := range l {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ConfigError reports a mistake in the option model itself: duplicate names,
// impossible cardinality, a default that cannot convert, and so on. These are
// bugs in the calling program rather than user input, so the model builders
// panic with a ConfigError instead of returning it.
type ConfigError struct {
	Option  string // offending option name, empty for manager-level mistakes
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("clasp: option %q: %s", e.Option, e.Message)
	}
	return "clasp: " + e.Message
}

func configPanic(option, format string, args ...interface{}) {
	panic(&ConfigError{Option: option, Message: fmt.Sprintf(format, args...)})
}

// InternalError marks a violated parser invariant. Seeing one is a bug in
// this package, never in the calling program or the parsed input.
type InternalError struct {
	Message string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "clasp: internal error: " + e.Message
}
