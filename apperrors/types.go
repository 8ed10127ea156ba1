package apperrors

import (
	"strings"
)

// ErrorClass represents the category of an error.
type ErrorClass string

const (
	// ErrClassConfig represents configuration-related errors.
	ErrClassConfig ErrorClass = "CONFIG"
	// ErrClassNetwork represents transport failures and non-2xx backend answers.
	ErrClassNetwork ErrorClass = "NETWORK"
	// ErrClassValidation represents client side validation failures.
	ErrClassValidation ErrorClass = "VALIDATION"
	// ErrClassParsing represents backend payloads that could not be decoded.
	ErrClassParsing ErrorClass = "PARSING"
	// ErrClassBackend represents business errors reported by the backend.
	ErrClassBackend ErrorClass = "BACKEND"
	// ErrClassI18n represents missing or unreadable message bundle keys.
	ErrClassI18n ErrorClass = "I18N"
	// ErrClassRender represents failures while writing html.
	ErrClassRender ErrorClass = "RENDER"
	// ErrClassUnknown represents unknown or unclassified errors.
	ErrClassUnknown ErrorClass = "UNKNOWN"
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Class represents the category of the error
	Class ErrorClass
	// Operation describes the operation that failed
	Operation string
	// Message describes the failed operation in more detail
	Message string
	// StatusCode is the HTTP status of a failed backend call, 0 otherwise
	StatusCode int
	// Err is the underlying error
	Err error
	// Context provides additional context about the error
	Context map[string]any
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	var bld strings.Builder
	bld.WriteRune('[')
	bld.WriteString(string(e.Class))
	bld.WriteRune(']')

	if e.Operation != "" {
		bld.WriteRune(' ')
		bld.WriteString(e.Operation)
	}

	if e.Message != "" {
		bld.WriteRune(' ')
		bld.WriteString(e.Message)
	}

	if e.Err != nil {
		bld.WriteString(" Error: ")
		bld.WriteString(e.Err.Error())
	}
	return bld.String()
}

// Unwrap returns the wrapped error for errors.Is/As compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a backend payload does not match the expected shape.
type ParseError struct {
	// Target names the type the payload was decoded into
	Target string
	// Body is an excerpt of the raw payload
	Body string
	Err  error
}

const maxBodyExcerpt = 120

func (e *ParseError) Error() string {
	var bld strings.Builder
	bld.WriteString("[")
	bld.WriteString(string(ErrClassParsing))
	bld.WriteString("] unable to parse ")
	bld.WriteString(e.Target)
	if e.Err != nil {
		bld.WriteString(": ")
		bld.WriteString(e.Err.Error())
	}
	if e.Body != "" {
		bld.WriteString(" (body: ")
		bld.WriteString(e.Body)
		bld.WriteString(")")
	}
	return bld.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError names the form field that blocked a submit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "[" + string(ErrClassValidation) + "] " + e.Field + ": " + e.Message
}
