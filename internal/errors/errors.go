// Package errors provides a lightweight structured error type (TextKitError)
// for category-based classification in the CLI and HTTP adapters.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a textkit error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryInput      ErrorCategory = "input"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"

	// Processing errors
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// TextKitError is a structured error with category, retryability, and context
type TextKitError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TextKitError
type ContextFields map[string]any

// Error implements the error interface
func (e *TextKitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TextKitError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TextKitError) WithContext(key string, value any) *TextKitError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the error severity
func (e *TextKitError) WithSeverity(severity ErrorSeverity) *TextKitError {
	e.Severity = severity
	return e
}

// New creates a new TextKitError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TextKitError {
	return &TextKitError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new TextKitError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TextKitError {
	return &TextKitError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// Retryable creates a new retryable TextKitError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *TextKitError {
	return &TextKitError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if tke, ok := err.(*TextKitError); ok {
		return tke.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if tke, ok := err.(*TextKitError); ok {
		return tke.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a TextKitError
func GetCategory(err error) ErrorCategory {
	if tke, ok := err.(*TextKitError); ok {
		return tke.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error (400 Bad Request)
func ValidationError(message string) *TextKitError {
	return &TextKitError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// WrapError wraps an existing error with a new TextKitError at error severity
func WrapError(err error, category ErrorCategory, message string) *TextKitError {
	return &TextKitError{
		Category:  category,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}
