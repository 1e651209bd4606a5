// Package stcerr defines the diagnostics reported by the static type checker.
package stcerr

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeLoad                   ErrorType = "LoadError"
	TypeMethodNotFound         ErrorType = "MethodNotFound"
	TypeAmbiguousMethod        ErrorType = "AmbiguousMethod"
	TypeIncompatibleAssignment ErrorType = "IncompatibleAssignment"
	TypePrecisionLoss          ErrorType = "PrecisionLoss"
	TypeIncompatibleReturn     ErrorType = "IncompatibleReturn"
	TypeIncompatibleArguments  ErrorType = "IncompatibleArguments"
	TypeInvalidCast            ErrorType = "InvalidCast"
	TypeStaticContext          ErrorType = "StaticContext"
	TypeReadOnly               ErrorType = "ReadOnly"
	TypeUnresolvedReference    ErrorType = "UnresolvedReference"
	TypeUnsupported            ErrorType = "UnsupportedConstruct"
	TypeInternal               ErrorType = "InternalError"
)

// StcError is the interface for all checker errors.
type StcError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for checker errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// Diagnostic is a recoverable checking error anchored to a source span.
type Diagnostic struct {
	BaseError
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	FilePath  string
}

func (e *Diagnostic) Error() string {
	if e.Line > 0 {
		if e.FilePath != "" {
			return fmt.Sprintf("[%s] %s:%d:%d %s", e.ErrType, e.FilePath, e.Line, e.Column, e.Msg)
		}
		return fmt.Sprintf("[%s] line %d:%d %s", e.ErrType, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// Synthetic reports whether the diagnostic points at generated code.
func (e *Diagnostic) Synthetic() bool {
	return e.Line <= 0
}

// InFile returns a copy of the diagnostic attributed to filePath.
func (e *Diagnostic) InFile(filePath string) *Diagnostic {
	c := *e
	c.FilePath = filePath
	return &c
}

// NewDiagnostic creates a Diagnostic without a position.
func NewDiagnostic(errType ErrorType, msg string) *Diagnostic {
	return &Diagnostic{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: errType,
		},
	}
}

// NewDiagnosticAt creates a Diagnostic spanning line:column to endLine:endColumn.
func NewDiagnosticAt(errType ErrorType, line, column, endLine, endColumn int, msg string) *Diagnostic {
	return &Diagnostic{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: errType,
		},
		Line:      line,
		Column:    column,
		EndLine:   endLine,
		EndColumn: endColumn,
	}
}

// MultiError collects multiple checker errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if se, ok := m.Errors[0].(StcError); ok {
			return se.Type()
		}
	}
	return "MultiError"
}

// InternalError signals a bug in the checker itself. It aborts the
// compilation unit instead of producing a user diagnostic.
type InternalError struct {
	BaseError
	Dump string
}

func (e *InternalError) Error() string {
	if e.Dump == "" {
		return e.BaseError.Error()
	}
	return fmt.Sprintf("[%s] %s\n%s", e.ErrType, e.Msg, e.Dump)
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                3,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// NewInternalError creates an InternalError with a dump of the offending values.
func NewInternalError(msg string, values ...any) *InternalError {
	e := &InternalError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeInternal,
		},
	}
	if len(values) > 0 {
		e.Dump = dumper.Sdump(values...)
	}
	return e
}
