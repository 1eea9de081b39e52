// Package services – sentinel errors
//
// Service-level errors are returned for predictable cases so handlers can
// map them to HTTP results consistently.
package services

import "errors"

var (
	// ErrPostNotFound indicates the requested post slug does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidCursor indicates a continuation token that could not be decoded.
	ErrInvalidCursor = errors.New("invalid continuation cursor")

	// ErrMissingField indicates a required request field was empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidEmail indicates an address that failed validation.
	ErrInvalidEmail = errors.New("invalid email address")
)
