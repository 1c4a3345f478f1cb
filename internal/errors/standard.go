// Package errors provides standardized error messaging for constprop.
//
// The rewrite core never fails: every unprovable case degrades to leaving an
// import live. Errors only originate in the host layers (reading files,
// parsing modules, loading configuration) and are reported with a category
// and a stable code.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategorySyntax ErrorCategory = "SYNTAX"
	CategoryLoad   ErrorCategory = "LOAD"
	CategoryConfig ErrorCategory = "CONFIG"
	CategoryIO     ErrorCategory = "IO"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
	Cause    error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *StandardError) Unwrap() error { return e.Cause }

// Is matches another StandardError by category and code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Category == e.Category && (t.Code == "" || t.Code == e.Code)
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// WithCause attaches an underlying error
func (e *StandardError) WithCause(err error) *StandardError {
	e.Cause = err
	return e
}

// Sentinels usable with errors.Is.
var (
	ErrSyntax = &StandardError{Category: CategorySyntax}
	ErrLoad   = &StandardError{Category: CategoryLoad}
	ErrConfig = &StandardError{Category: CategoryConfig}
	ErrIO     = &StandardError{Category: CategoryIO}
)

// Common error constructors
func SyntaxError(file string, cause error) *StandardError {
	return NewStandardError(CategorySyntax, "PARSE_FAILED",
		fmt.Sprintf("failed to parse %s", file),
		map[string]interface{}{"file": file}).WithCause(cause)
}

func ReadFailed(file string, cause error) *StandardError {
	return NewStandardError(CategoryIO, "READ_FAILED",
		fmt.Sprintf("failed to read %s", file),
		map[string]interface{}{"file": file}).WithCause(cause)
}

func WriteFailed(file string, cause error) *StandardError {
	return NewStandardError(CategoryIO, "WRITE_FAILED",
		fmt.Sprintf("failed to write %s", file),
		map[string]interface{}{"file": file}).WithCause(cause)
}

func RootNotFound(root string, cause error) *StandardError {
	return NewStandardError(CategoryLoad, "ROOT_NOT_FOUND",
		fmt.Sprintf("project root %s is not accessible", root),
		map[string]interface{}{"root": root}).WithCause(cause)
}

func InvalidConfig(field, details string) *StandardError {
	return NewStandardError(CategoryConfig, "INVALID_CONFIG",
		fmt.Sprintf("invalid value for %q: %s", field, details),
		map[string]interface{}{"field": field})
}

func VersionMismatch(constraint, version string) *StandardError {
	return NewStandardError(CategoryConfig, "VERSION_MISMATCH",
		fmt.Sprintf("tool version %s does not satisfy %q", version, constraint),
		map[string]interface{}{"constraint": constraint, "version": version})
}

// CategoryOf returns the category of err, or "" when err is not a StandardError.
func CategoryOf(err error) ErrorCategory {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}
