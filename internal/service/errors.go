package service

import (
	"errors"

	"github.com/blog-comments-api/internal/validation"
)

var (
	// ErrInvalidInput marks a malformed or out-of-bounds request
	ErrInvalidInput = errors.New("invalid input")
	// ErrRateLimited marks a request rejected by the rate limiter
	ErrRateLimited = errors.New("rate limited")
	// ErrStorage marks a failed store operation
	ErrStorage = errors.New("storage error")
	// ErrIdempotencyConflict marks a reused idempotency key carrying a
	// different comment
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)

// IdempotencyConflictMessage is the user-facing message for a reused key
const IdempotencyConflictMessage = "This Idempotency-Key was already used for a different comment"

// RateLimitedMessage is the user-facing message for rejected writes
const RateLimitedMessage = "Too many comments, please wait a moment and try again"

// InvalidInputError carries a user-readable message and per-field details
type InvalidInputError struct {
	Message string
	Fields  []validation.ValidationError
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// Is reports ErrInvalidInput so callers can match with errors.Is
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInvalidInput builds an InvalidInputError with the standard bounds message
func NewInvalidInput(fields ...validation.ValidationError) *InvalidInputError {
	return &InvalidInputError{Message: validation.BoundsMessage, Fields: fields}
}

// StorageError wraps a store failure. Its cause is for logs only and must
// never reach the client.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage so callers can match with errors.Is
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// invalidField reports a single field with its own message
func invalidField(fe validation.ValidationError) *InvalidInputError {
	return &InvalidInputError{Message: fe.Message, Fields: []validation.ValidationError{fe}}
}
