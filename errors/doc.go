// Package errors provides structured error types for the cstruct module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/C type names, and cause chain.
//
// The four record engine failures map to kinds:
//
//	ConfigurationError  KindConfiguration  invalid record definition
//	SizeMismatchError   KindSizeMismatch   buffer length differs from the layout
//	ValueMismatchError  KindValueMismatch  value shape or range differs from the field type
//	ValidationError     KindValidation     validator hook rejected the values
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindValueMismatch).
//		Path("header", "code").
//		GoType("string").
//		CType("int16").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(path, 70000, "int16")
//	err := errors.SizeMismatch(errors.PhaseDecode, nil, 20, 19)
//
// Test for a category with the sentinels, which match on kind alone:
//
//	if errors.Is(err, cerrors.ErrSizeMismatch) { ... }
package errors
