package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile  Phase = "compile"  // record type definition
	PhaseEncode   Phase = "encode"   // values to bytes
	PhaseDecode   Phase = "decode"   // bytes to values
	PhaseValidate Phase = "validate" // user validation hook
	PhaseLoad     Phase = "load"     // schema and config loading
	PhaseStore    Phase = "store"    // record store operations
)

// Kind categorizes the error
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindSizeMismatch  Kind = "size_mismatch"
	KindValueMismatch Kind = "value_mismatch"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindInvalidInput  Kind = "invalid_input"
)

// Sentinels for errors.Is. They carry no phase and match any error of the same kind.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrSizeMismatch  = &Error{Kind: KindSizeMismatch}
	ErrValueMismatch = &Error{Kind: KindValueMismatch}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	CType  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.CType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.CType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", C type ")
			b.WriteString(e.CType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("C type ")
			b.WriteString(e.CType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.CType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// CType sets the C type name
func (b *Builder) CType(t string) *Builder {
	b.err.CType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Configuration creates an invalid record definition error
func Configuration(path []string, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindConfiguration,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
	}
}

// SizeMismatch creates a buffer length error
func SizeMismatch(phase Phase, path []string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSizeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected %d bytes, got %d", want, got),
		Value:  got,
	}
}

// TypeMismatch creates a value shape error
func TypeMismatch(path []string, goType, cType string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindValueMismatch,
		Path:   path,
		GoType: goType,
		CType:  cType,
	}
}

// Overflow creates a value range error
func Overflow(path []string, value any, cType string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindValueMismatch,
		Path:   path,
		CType:  cType,
		Detail: fmt.Sprintf("value %v overflows %s", value, cType),
		Value:  value,
	}
}

// LengthMismatch creates an array length error
func LengthMismatch(path []string, cType string, want, got int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindValueMismatch,
		Path:   path,
		CType:  cType,
		Detail: fmt.Sprintf("expected %d elements, got %d", want, got),
		Value:  got,
	}
}

// Validation creates a rejected-by-validator error
func Validation(record string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindValidation,
		Detail: fmt.Sprintf("%s rejected its field values", record),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
