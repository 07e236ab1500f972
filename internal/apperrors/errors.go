package apperrors

import (
	"errors"
	"fmt"
)

// ErrUnparseableDate indicates that a free-text date could not be understood.
var ErrUnparseableDate = errors.New("unparseable date")

// ErrUnknownCurrency indicates a currency code outside the supported allowlist.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrInvalidAmount indicates that an income amount is not a valid number.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrMalformedRecord indicates an input record with the wrong shape (e.g. field count).
var ErrMalformedRecord = errors.New("malformed record")

// ErrRateNotPublished is returned by a rate fetcher when the service has no rate
// for the requested day. It drives the backward walk and never leaves the resolver.
var ErrRateNotPublished = errors.New("no rate published for day")

// ErrRateNotFoundExhausted indicates that the backward walk hit its bound without finding a rate.
var ErrRateNotFoundExhausted = errors.New("no rate available")

// ErrRateServiceFailure indicates a transport or service error unrelated to day-level availability.
var ErrRateServiceFailure = errors.New("rate service failure")

// ErrMalformedRateResponse indicates a response that did not carry exactly one rate record.
var ErrMalformedRateResponse = errors.New("malformed rate response")

// AppError carries an error kind (one of the sentinels above), a human readable
// message and the underlying cause, if any.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind error, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// NewServiceFailure wraps a transport-level error as ErrRateServiceFailure.
func NewServiceFailure(message string, err error) *AppError {
	return NewAppError(ErrRateServiceFailure, message, err)
}

// NewMalformedResponse builds an ErrMalformedRateResponse error.
func NewMalformedResponse(message string) *AppError {
	return NewAppError(ErrMalformedRateResponse, message, nil)
}

// IsEntryError reports whether err is an entry-level error: the input itself
// was bad and nothing was sent to the rate service.
func IsEntryError(err error) bool {
	return errors.Is(err, ErrUnparseableDate) ||
		errors.Is(err, ErrUnknownCurrency) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrMalformedRecord)
}
