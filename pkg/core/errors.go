package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

// Kind classifies errors returned at the loader boundary.
type Kind int

const (
	// KindConfiguration marks invalid input detected at construction time.
	KindConfiguration Kind = iota + 1
	// KindDataLoading marks a failure while fetching or parsing data.
	KindDataLoading
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindDataLoading:
		return "data loading error"
	default:
		return "unknown error"
	}
}

// Kind sentinels for use with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDataLoading   = errors.New("data loading error")
)

// Cause sentinels wrapped by configuration and data loading errors.
var (
	ErrNotAFile          = errors.New("not a file")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidEngine     = errors.New("invalid parquet engine")
	ErrSheetNotFound     = errors.New("worksheet not found")
	ErrMissingOption     = errors.New("missing required option")
)

// Error is the error type returned by the loader.
//
// Msg describes the failure in human terms. Err, when set, is the underlying
// cause and is reachable through errors.Unwrap and errors.As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels ErrConfiguration and ErrDataLoading.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrDataLoading:
		return e.Kind == KindDataLoading
	}
	return false
}

// ConfigurationError builds a KindConfiguration error wrapping err.
func ConfigurationError(err error, format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...), Err: err}
}

// DataLoadingError builds a KindDataLoading error wrapping err.
// An err that already is a data loading error is returned unchanged.
func DataLoadingError(err error, format string, args ...any) error {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindDataLoading {
		return err
	}
	return &Error{Kind: KindDataLoading, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
