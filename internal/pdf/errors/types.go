package errors

import (
	"errors"
	"fmt"
)

// PDFError is the single error kind surfaced by document operations. It
// carries a category, a human readable message and, when known, the file and
// page the failure relates to. There is no retry: callers re-run the whole
// operation.
type PDFError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	FilePath   string    `json:"file_path,omitempty"`
	PageNumber int       `json:"page_number,omitempty"`
	Err        error     `json:"-"`
}

// ErrorType represents different categories of document failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeOpenFailed
	ErrorTypeTextLayer
	ErrorTypePageOutOfRange
	ErrorTypeRender
	ErrorTypeEncode
	ErrorTypeValidation
	ErrorTypeSecurity
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeOpenFailed:
		return "OPEN_FAILED"
	case ErrorTypeTextLayer:
		return "TEXT_LAYER"
	case ErrorTypePageOutOfRange:
		return "PAGE_OUT_OF_RANGE"
	case ErrorTypeRender:
		return "RENDER"
	case ErrorTypeEncode:
		return "ENCODE"
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeSecurity:
		return "SECURITY"
	default:
		return "UNKNOWN"
	}
}

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.FilePath != "" {
		return fmt.Sprintf("[%s] %s (%s)", e.Type, msg, e.FilePath)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// New creates a PDFError without an underlying cause
func New(errorType ErrorType, message string) *PDFError {
	return &PDFError{Type: errorType, Message: message}
}

// Newf creates a PDFError with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *PDFError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps err as a PDFError. A nil err yields nil.
func Wrap(errorType ErrorType, message string, err error) *PDFError {
	if err == nil {
		return nil
	}
	return &PDFError{Type: errorType, Message: message, Err: err}
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// IsType reports whether err is, or wraps, a PDFError of the given type
func IsType(err error, errorType ErrorType) bool {
	var pdfErr *PDFError
	if errors.As(err, &pdfErr) {
		return pdfErr.Type == errorType
	}
	return false
}
