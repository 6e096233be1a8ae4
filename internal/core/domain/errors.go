package domain

import "errors"

var (
	// ErrUnexpectedStatus is returned when a remote endpoint answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrMalformedPayload is returned when a response body cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrInvalidInput is returned for caller-supplied values out of range.
	ErrInvalidInput = errors.New("invalid input")
)
