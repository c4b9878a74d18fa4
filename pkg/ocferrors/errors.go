// Package ocferrors provides structured error handling for the OCF property layer
// with error categorization, key-value context and stack traces.
//
// # Overview
//
// Every failure raised by the property layer is an *Error whose Type tells the
// caller what went wrong:
//   - ErrorTypeInvalidParameter: a required collaborator was missing at construction
//   - ErrorTypeNoMoreElements: an iterator was read past its end
//   - ErrorTypePropertyServerAccess: the property server could not serve a page
//   - ErrorTypeUnsupportedOperation: a mutation was requested on a read-only view
//
// Backends additionally use the transport types (connection, timeout, rate_limit),
// which IsRetryable treats as transient.
//
// # Basic Usage
//
//	page, err := server.FetchElements(ctx, guid, kind, start, size)
//	if err != nil {
//	    return ocferrors.Wrap(err, ocferrors.ErrorTypePropertyServerAccess, "page fetch failed").
//	        WithDetail("owner_guid", guid).
//	        WithDetail("kind", kind)
//	}
//
// # Thread Safety
//
// Error instances are not safe for concurrent modification. Add details before
// sharing an error across goroutines.
package ocferrors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// ErrorTypeInvalidParameter represents a missing or unusable argument
	ErrorTypeInvalidParameter ErrorType = "invalid_parameter"
	// ErrorTypeNoMoreElements represents a read past the end of an iterator
	ErrorTypeNoMoreElements ErrorType = "no_more_elements"
	// ErrorTypePropertyServerAccess represents a failure of the backing property server
	ErrorTypePropertyServerAccess ErrorType = "property_server_access"
	// ErrorTypeUnsupportedOperation represents an operation a read-only type does not offer
	ErrorTypeUnsupportedOperation ErrorType = "unsupported_operation"
	// ErrorTypeValidation represents malformed requests
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents unknown assets or owners
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConnection represents connection errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeTimeout represents timeout errors
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeRateLimit represents rate limit errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents undecodable documents
	ErrorTypeData ErrorType = "data"
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: categorizes the error for handling strategies
//   - Message: human-readable description
//   - Cause: the underlying error, if any
//   - Details: key-value pairs such as the iterator name or owner GUID
//   - Stack: call stack at the point of creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface. Details are rendered in key order so the
// message is stable.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString("]")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. Calls can be chained.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns a detail value and whether it was set.
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// New creates a new error with the given type and message, capturing the call stack.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a format string.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context. If err is already an
// *Error its stack trace is preserved. Returns nil when err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType reports whether the outermost *Error in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// HasType reports whether any *Error in err's chain has the given type.
func HasType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// TypeOf returns the type of the outermost *Error in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Type
}

// IsRetryable reports whether any error in the chain is transient. Rate limit,
// timeout and connection errors are considered retryable.
func IsRetryable(err error) bool {
	return HasType(err, ErrorTypeConnection) ||
		HasType(err, ErrorTypeTimeout) ||
		HasType(err, ErrorTypeRateLimit)
}

func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
