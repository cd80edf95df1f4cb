package clasp

import "errors"

// ExitCodes holds the category defaults used when no explicit code is
// defined for an error kind.
type ExitCodes struct {
	Success    int // no errors
	General    int // unclassified failures
	Misusage   int // the command line could not be understood
	Validation int // the command line was understood but violates the model
	NotFound   int // an option file could not be used
}

// ExitCodeManager maps parse outcomes to process exit codes. The zero
// defaults follow shell conventions: 0 success, 1 general, 2 misusage,
// 3 validation, 127 not found.
type ExitCodeManager struct {
	defaults ExitCodes
	byKind   map[ErrorKind]int
}

func newExitCodeManager() *ExitCodeManager {
	return &ExitCodeManager{
		defaults: ExitCodes{Success: 0, General: 1, Misusage: 2, Validation: 3, NotFound: 127},
		byKind:   make(map[ErrorKind]int),
	}
}

// Define pins an explicit exit code for one error kind, overriding its
// category default.
func (e *ExitCodeManager) Define(kind ErrorKind, code int) *ExitCodeManager {
	e.byKind[kind] = code
	return e
}

// Defaults replaces the category defaults.
func (e *ExitCodeManager) Defaults(c ExitCodes) *ExitCodeManager {
	e.defaults = c
	return e
}

// Resolve picks the exit code for a parse outcome. A nil error resolves to
// success; an error list resolves through its first entry, the first problem
// the user should fix.
func (e *ExitCodeManager) Resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}
	var list ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return e.codeFor(list[0].Kind)
	}
	var info *ErrorInfo
	if errors.As(err, &info) {
		return e.codeFor(info.Kind)
	}
	return e.defaults.General
}

func (e *ExitCodeManager) codeFor(kind ErrorKind) int {
	if code, ok := e.byKind[kind]; ok {
		return code
	}
	switch kind {
	case ErrorKindMissingClosingQuote, ErrorKindEmptyOptionName, ErrorKindUnknownOption,
		ErrorKindUnexpectedAssignment, ErrorKindMissingValue, ErrorKindAssignmentToNonValue:
		return e.defaults.Misusage
	case ErrorKindMissingRequiredOption, ErrorKindIllegalCardinality, ErrorKindOptionProhibited,
		ErrorKindOverflow, ErrorKindInvalidFormat, ErrorKindInvalidValue:
		return e.defaults.Validation
	case ErrorKindFileNotFound:
		return e.defaults.NotFound
	default:
		return e.defaults.General
	}
}
