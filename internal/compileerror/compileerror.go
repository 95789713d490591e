// Package compileerror defines the single structured error kind the
// analyzer raises for every semantic violation: a (file path, message,
// line) triple, fatal and not accumulated across a pass.
package compileerror

import (
	"fmt"

	"github.com/pkg/errors"
)

// CyclicImport is the fixed, localized message for a detected import
// cycle, preserved verbatim for user-facing compatibility.
const CyclicImport = "Erro ao importar módulo. inclusão cíclica detectada"

// CompileError is the one error kind that surfaces to a caller of
// analysis. Message is Portuguese and must be preserved verbatim for
// user-facing compatibility; cause (when present) is the lower-level
// failure that triggered it (e.g. a file read failure while resolving a
// usa path), kept for diagnostics but never shown in place of Message.
type CompileError struct {
	File    string
	Message string
	Line    int
	cause   error
}

// New creates a CompileError with no wrapped cause.
func New(file, message string, line int) *CompileError {
	return &CompileError{File: file, Message: message, Line: line}
}

// Wrap creates a CompileError that wraps cause, annotating it with
// errors.Wrap so a %+v print retains the original stack.
func Wrap(cause error, file, message string, line int) *CompileError {
	return &CompileError{File: file, Message: message, Line: line, cause: errors.Wrap(cause, message)}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.cause
}
