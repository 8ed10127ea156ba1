package apperrors

import (
	"errors"
)

// Wrap creates a classified error.
func Wrap(class ErrorClass, operation string, err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	return &ClassifiedError{
		Class:     class,
		Operation: operation,
		Err:       err,
		Context:   make(map[string]any),
	}
}

// New creates a new classified error with a message.
func New(class ErrorClass, operation string, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]any),
	}
}

// NewStatus creates a network error for a non-2xx backend answer.
func NewStatus(operation string, statusCode int, message string) *ClassifiedError {
	ce := New(ErrClassNetwork, operation, message)
	ce.StatusCode = statusCode
	return ce
}

// NewParse creates a ParseError keeping a bounded excerpt of the payload.
func NewParse(target string, body []byte, err error) *ParseError {
	excerpt := string(body)
	if len(excerpt) > maxBodyExcerpt {
		excerpt = excerpt[:maxBodyExcerpt] + "..."
	}
	return &ParseError{Target: target, Body: excerpt, Err: err}
}

// Required is the validation error used for empty required fields.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "field is required"}
}

// WithContext adds context to a classified error.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	if e == nil {
		return nil
	}

	e.Context[key] = value

	return e
}

// GetClass extracts the error class from an error.
func GetClass(err error) ErrorClass {
	if err == nil {
		return ErrClassUnknown
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		return ErrClassParsing
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrClassValidation
	}

	return ErrClassUnknown
}

// GetStatusCode returns the backend HTTP status carried by err, or 0.
func GetStatusCode(err error) int {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}

// IsParse reports whether err is or wraps a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsClass checks if an error belongs to a specific class.
func IsClass(err error, class ErrorClass) bool {
	return GetClass(err) == class
}

// UserMessage returns the text shown in banners: the backend message for
// classified errors, the plain error text otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field + ": " + ve.Message
	}
	return err.Error()
}
