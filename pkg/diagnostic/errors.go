// Package diagnostic defines the errors surfaced by the compiler pipeline.
//
// User-facing errors (InvalidSyntaxError, SemanticError) carry the file path,
// the 1-based position of the offending node and a rendered code frame.
// InternalError signals a compiler bug and ResolutionError a module that could
// not be found; both abort the current file.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/gnana997/rjt/pkg/ast"
)

// DefaultSyntaxMessage is used when an InvalidSyntaxError has no message.
const DefaultSyntaxMessage = "invalid syntax"

// Diagnostic holds the fields shared by every located error.
type Diagnostic struct {
	File    string
	Message string
	Range   ast.Range
	Frame   string
}

func newDiagnostic(file string, source []byte, r ast.Range, message string) Diagnostic {
	d := Diagnostic{File: file, Message: message, Range: r}
	if len(source) > 0 && r.IsValid() {
		d.Frame = CodeFrame(source, r.Start, r.End)
	}
	return d
}

// Location returns "file:line:col", or just the file when no position is known.
func (d Diagnostic) Location() string {
	if !d.Range.IsValid() {
		return d.File
	}
	return fmt.Sprintf("%s:%d:%d", d.File, d.Range.Start.Line, d.Range.Start.Column)
}

func (d Diagnostic) render(fallback string) string {
	msg := d.Message
	if msg == "" {
		msg = fallback
	}

	var b strings.Builder
	b.WriteString(msg)
	b.WriteString("\n")
	b.WriteString(d.Location())
	if d.Frame != "" {
		b.WriteString("\n")
		b.WriteString(d.Frame)
	}
	return b.String()
}

// InvalidSyntaxError reports source that breaks the host grammar or the
// structural rules of a template file.
type InvalidSyntaxError struct {
	Diagnostic
}

// NewInvalidSyntaxError builds an InvalidSyntaxError. An empty message falls
// back to DefaultSyntaxMessage.
func NewInvalidSyntaxError(file string, source []byte, r ast.Range, message string) *InvalidSyntaxError {
	return &InvalidSyntaxError{Diagnostic: newDiagnostic(file, source, r, message)}
}

func (e *InvalidSyntaxError) Error() string {
	return e.render(DefaultSyntaxMessage)
}

// SemanticError reports markup the compiler cannot classify or rewrite.
type SemanticError struct {
	Diagnostic
}

// NewSemanticError builds a SemanticError.
func NewSemanticError(file string, source []byte, r ast.Range, message string) *SemanticError {
	return &SemanticError{Diagnostic: newDiagnostic(file, source, r, message)}
}

func (e *SemanticError) Error() string {
	return e.render("semantic error")
}

// InternalError is raised when an invariant the compiler relies on does not
// hold. It is never caused by user input alone.
type InternalError struct {
	Message string
}

// NewInternalError formats an InternalError.
func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

// ResolutionError reports an import specifier that maps to no file.
type ResolutionError struct {
	From      string
	Specifier string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve module %q from %s", e.Specifier, e.From)
}
