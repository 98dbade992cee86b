package common

import (
	"errors"
	"fmt"
	"runtime"
)

type DetailedError interface {
	Detail() string
}

// ErrorKind classifies the errors a submission can end with, so the
// presentation layer can tell them apart.
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	ValidationError    ErrorKind = "ValidationError"
	StorageError       ErrorKind = "StorageError"
	TransportError     ErrorKind = "TransportError"
	TimeoutError       ErrorKind = "TimeoutError"
	ResponseError      ErrorKind = "ResponseError"
	ConfigurationError ErrorKind = "ConfigurationError"
)

// Sentinels for use with errors.Is. Any *Error or *HttpError of the
// matching kind satisfies errors.Is(err, ErrXxx).
var (
	ErrValidation    = errors.New("validation error")
	ErrStorage       = errors.New("storage error")
	ErrTransport     = errors.New("transport error")
	ErrTimeout       = errors.New("timeout error")
	ErrResponse      = errors.New("response error")
	ErrConfiguration = errors.New("configuration error")
)

var kindSentinels = map[ErrorKind]error{
	ValidationError:    ErrValidation,
	StorageError:       ErrStorage,
	TransportError:     ErrTransport,
	TimeoutError:       ErrTimeout,
	ResponseError:      ErrResponse,
	ConfigurationError: ErrConfiguration,
}

// Error is a custom error type that includes some additional fields
// to help us debug. See the Detail method.
type Error struct {
	Err     error
	File    string
	IsFatal bool
	Kind    ErrorKind
	Line    int
	Message string
}

func NewError(message string, err error, isFatal bool) *Error {
	return newError(KindNone, message, err, isFatal)
}

// NewValidationError describes bad or missing input. The user must
// fix the input and resubmit.
func NewValidationError(message string) *Error {
	return newError(ValidationError, message, nil, false)
}

// NewStorageError describes a failure of the object storage backend.
func NewStorageError(message string, err error) *Error {
	return newError(StorageError, message, err, false)
}

// NewTransportError describes a failure to reach the processing API,
// such as a DNS or connection error.
func NewTransportError(message string, err error) *Error {
	return newError(TransportError, message, err, false)
}

// NewTimeoutError describes a processing API call that did not finish
// within the configured timeout.
func NewTimeoutError(message string, err error) *Error {
	return newError(TimeoutError, message, err, false)
}

// NewResponseError describes a processing API response we can't use.
func NewResponseError(message string, err error) *Error {
	return newError(ResponseError, message, err, false)
}

// NewConfigurationError describes missing or invalid settings. These
// are fatal: nothing works until someone fixes the config.
func NewConfigurationError(message string, err error) *Error {
	return newError(ConfigurationError, message, err, true)
}

func newError(kind ErrorKind, message string, err error, isFatal bool) *Error {
	_, file, line, _ := runtime.Caller(2)
	return &Error{
		Err:     err,
		File:    file,
		IsFatal: isFatal,
		Kind:    kind,
		Line:    line,
		Message: message,
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match this error against the kind sentinels.
func (e *Error) Is(target error) bool {
	return e.Kind != KindNone && kindSentinels[e.Kind] == target
}

// This returns a detailed error message.
func (e *Error) Detail() string {
	prefix := ""
	if e.IsFatal {
		prefix = "FATAL: "
	}
	kind := ""
	if e.Kind != KindNone {
		kind = fmt.Sprintf("%s: ", e.Kind)
	}
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf("(Underlying error: %s)", e.Err.Error())
	}
	return fmt.Sprintf("%s%s%s [%s:%d] %s",
		prefix, kind, e.Message, e.File, e.Line, underlyingError)
}

// HttpError is a custom error struct that captures details of
// unusable responses from the processing API. Its kind is
// ResponseError.
type HttpError struct {
	Body       string
	Err        error
	Message    string
	Method     string
	StatusCode int
	URL        string
}

func NewHttpError(message string, err error, method, url string, statusCode int) *HttpError {
	return &HttpError{
		Err:        err,
		Message:    message,
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
	}
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func (e *HttpError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrResponse) match an HttpError.
func (e *HttpError) Is(target error) bool {
	return target == ErrResponse
}

func (e *HttpError) Detail() string {
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf("(Underlying error: %s)", e.Err.Error())
	}
	return fmt.Sprintf(
		"%s: %s returned status %d. Message: %s %s",
		e.Method, e.URL, e.StatusCode, e.Message, underlyingError)
}

// KindOf returns the ErrorKind of err, looking through wrapped errors.
// It returns KindNone for nil and for errors that carry no kind.
func KindOf(err error) ErrorKind {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Kind != KindNone {
				return e.Kind
			}
		case *HttpError:
			return ResponseError
		}
		err = errors.Unwrap(err)
	}
	return KindNone
}

// IsRecoverable returns true if the user can fix the problem by
// resubmitting, possibly with corrected input.
func IsRecoverable(err error) bool {
	return KindOf(err) != ConfigurationError
}
