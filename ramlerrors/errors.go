// Package ramlerrors provides structured error types for ramltools.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between fatal failures
// (unreadable input, unsupported version, unknown type expression) and the
// soft findings collected while resolving a document.
//
// # Error Categories
//
//   - LoadError: missing or unreadable input, unrecognised document shape
//   - VersionError: RAML version not in the configured allow-list
//   - FragmentError: fragment kind the caller cannot handle
//   - TypeExpressionError: unknown or unsupported data type expression
//   - TransformError: unknown <<param | !transform>> function
//   - DataTypeValidationError: an instance violates a data type
//   - ValidationError: one collected structural/parameter finding
//   - InvalidDocumentError: every finding of a parse run in validate mode
//   - ConfigError: invalid configuration or input options
//
// # Usage with errors.As
//
//	_, err := raml.ParseWithOptions(raml.WithFilePath("api.raml"), raml.WithValidate(true))
//	var invalid *ramlerrors.InvalidDocumentError
//	if errors.As(err, &invalid) {
//	    for _, e := range invalid.Errors {
//	        fmt.Println(e)
//	    }
//	}
package ramlerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrLoad indicates the input could not be read or decoded.
	ErrLoad = errors.New("load error")

	// ErrVersion indicates an unsupported RAML version.
	ErrVersion = errors.New("unsupported RAML version")

	// ErrFragment indicates a fragment kind that cannot be handled.
	ErrFragment = errors.New("unsupported fragment")

	// ErrTypeExpression indicates an unknown or unsupported data type expression.
	ErrTypeExpression = errors.New("unsupported data type expression")

	// ErrTransform indicates an unknown parameter transform function.
	ErrTransform = errors.New("unknown transform")

	// ErrDataTypeValidation indicates an instance failed data type validation.
	ErrDataTypeValidation = errors.New("data type validation error")

	// ErrValidation indicates a RAML document violation.
	ErrValidation = errors.New("validation error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// LoadError represents a failure to read or decode a RAML document.
type LoadError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *LoadError) Error() string {
	msg := "load error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// VersionError reports a RAML version outside the supported set.
type VersionError struct {
	// Version is the declared version ("" when the header is missing)
	Version string
	// Supported lists the configured versions
	Supported []string
}

// Error returns a human-readable error message.
func (e *VersionError) Error() string {
	if e.Version == "" {
		return "unsupported RAML version: no version declared"
	}
	msg := fmt.Sprintf("unsupported RAML version %q", e.Version)
	if len(e.Supported) > 0 {
		msg += " (supported: " + strings.Join(e.Supported, ", ") + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *VersionError) Is(target error) bool {
	return target == ErrVersion
}

// FragmentError reports a fragment kind the called entry point cannot handle.
type FragmentError struct {
	// Fragment is the fragment kind found in the document header
	Fragment string
	// Expected is the fragment kind the entry point handles
	Expected string
}

// Error returns a human-readable error message.
func (e *FragmentError) Error() string {
	msg := "unsupported fragment"
	if e.Fragment != "" {
		msg += " " + e.Fragment
	}
	if e.Expected != "" {
		msg += " (expected " + e.Expected + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *FragmentError) Is(target error) bool {
	return target == ErrFragment
}

// TypeExpressionError reports a data type whose base type cannot be resolved.
type TypeExpressionError struct {
	// Name is the name of the type being declared (may be empty for inline types)
	Name string
	// Expression is the unresolvable type expression
	Expression string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *TypeExpressionError) Error() string {
	msg := fmt.Sprintf("unknown/unsupported data type expression %q", e.Expression)
	if e.Name != "" {
		msg += " for type " + e.Name
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *TypeExpressionError) Is(target error) bool {
	return target == ErrTypeExpression
}

// TransformError reports a <<param | !fn>> clause naming an unknown function.
type TransformError struct {
	// Transform is the unknown function name
	Transform string
	// Parameter is the parameter the transform was applied to
	Parameter string
}

// Error returns a human-readable error message.
func (e *TransformError) Error() string {
	return fmt.Sprintf("unknown transform !%s applied to parameter <<%s>>", e.Transform, e.Parameter)
}

// Is reports whether target matches this error type.
func (e *TransformError) Is(target error) bool {
	return target == ErrTransform
}

// DataTypeValidationError reports an instance that violates a data type.
type DataTypeValidationError struct {
	// Position locates the offending value (e.g. "person.address.zip")
	Position string
	// Value is the offending value
	Value any
	// Reason describes the violated constraint
	Reason string
}

// Error returns a human-readable error message.
func (e *DataTypeValidationError) Error() string {
	return fmt.Sprintf("%s: %v %s", e.Position, e.Value, e.Reason)
}

// Is reports whether target matches this error type.
func (e *DataTypeValidationError) Is(target error) bool {
	return target == ErrDataTypeValidation
}

// ValidationError represents one RAML document violation.
type ValidationError struct {
	// Kind classifies the finding: "root", "parameter", "datatype", "security", "resource"
	Kind string
	// Path locates the problem (e.g. "/users/{id}.get.queryParameters.page")
	Path string
	// Field is the specific attribute with the issue
	Field string
	// Value is the problematic value (may be nil)
	Value any
	// Message describes the violation
	Message string
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Kind != "" {
		msg = e.Kind + " " + msg
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidDocumentError aggregates every finding of a parse run.
// It is returned only when validation mode is enabled.
type InvalidDocumentError struct {
	// Source is the document path or identifier
	Source string
	// Errors holds one *ValidationError per finding, in discovery order
	Errors []error
}

// Error returns a human-readable error message.
func (e *InvalidDocumentError) Error() string {
	var b strings.Builder
	b.WriteString("invalid RAML document")
	if e.Source != "" {
		b.WriteString(" " + e.Source)
	}
	fmt.Fprintf(&b, ": %d error(s)", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual findings to errors.Is and errors.As.
func (e *InvalidDocumentError) Unwrap() []error {
	return e.Errors
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
