package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Sentinel errors raised by the pipeline. AppErrors wrap them as Cause so
// callers can match with errors.Is.
var (
	// ErrUnknownSeries is returned in strict mode when a series name matches no classification rule.
	ErrUnknownSeries = errors.New("unknown series")
	// ErrUnknownBreakdown is returned when a series breakdown label is not female, male or total.
	ErrUnknownBreakdown = errors.New("unknown breakdown label")
	// ErrYearNotAvailable is returned when a year is requested that has no backing data.
	ErrYearNotAvailable = errors.New("year not available")
	// ErrMissingColumn is returned when an input table lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrFileNotFound is returned when an input file does not exist.
	ErrFileNotFound = errors.New("file not found")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), ErrFileNotFound)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewUnknownBreakdownError reports a breakdown label that could not be standardized.
func NewUnknownBreakdownError(label, series string) *AppError {
	return NewAppValidationError(fmt.Sprintf("breakdown %q of series %q", label, series), ErrUnknownBreakdown).
		WithContext("label", label).
		WithContext("series", series)
}

// NewUnknownSeriesError reports a series name no classification rule matches.
func NewUnknownSeriesError(series string) *AppError {
	return NewAppValidationError(fmt.Sprintf("series %q", series), ErrUnknownSeries).
		WithContext("series", series)
}

// NewYearNotAvailableError reports a year with no backing dataset.
func NewYearNotAvailableError(dataset string, year int) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s for %d", dataset, year), ErrYearNotAvailable).
		WithContext("dataset", dataset).
		WithContext("year", year)
}

// NewMissingColumnError reports a required column absent from a table.
func NewMissingColumnError(table, column string) *AppError {
	return NewAppValidationError(fmt.Sprintf("%s has no column %q", table, column), ErrMissingColumn).
		WithContext("table", table).
		WithContext("column", column)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
