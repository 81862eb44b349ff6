package model

import (
	"errors"
	"fmt"
)

// Error represents a rejected document operation.
//
// Error categories:
//   - Reference: the operation addressed a missing element, component,
//     variant, prop or instance
//   - Structural: applying the operation would break the tree, a
//     component's shape or an instance's ownership of its subtree
//   - Dangling: a record points at something that no longer exists
//   - Corrupt: a loaded document or snapshot violates an invariant
//   - Invalid: a value does not fit its declared type
//
// An operation that returns an *Error has left all state untouched.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that was rejected ("deleteElement", "addVariant").
	Op string

	// ID identifies the addressed record, if any.
	ID string

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes document errors.
type ErrorCode string

const (
	// ErrCodeReference indicates a missing element/component/instance id.
	ErrCodeReference ErrorCode = "REFERENCE"

	// ErrCodeStructural indicates the operation would violate an invariant.
	ErrCodeStructural ErrorCode = "STRUCTURAL"

	// ErrCodeDangling indicates a record refers to a deleted component or prop.
	ErrCodeDangling ErrorCode = "DANGLING"

	// ErrCodeCorrupt indicates a document or snapshot that fails validation.
	ErrCodeCorrupt ErrorCode = "CORRUPT"

	// ErrCodeInvalid indicates a value that does not match its type.
	ErrCodeInvalid ErrorCode = "INVALID"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" && e.ID != "" {
		return fmt.Sprintf("%s: %s: %s (id=%s)", e.Code, e.Op, e.Message, e.ID)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsReferenceError returns true if err reports a missing id.
// Uses errors.As to handle wrapped errors.
func IsReferenceError(err error) bool {
	return hasCode(err, ErrCodeReference)
}

// IsStructuralError returns true if err reports a rejected invariant violation.
func IsStructuralError(err error) bool {
	return hasCode(err, ErrCodeStructural)
}

// IsCorruptError returns true if err reports a corrupt document or snapshot.
func IsCorruptError(err error) bool {
	return hasCode(err, ErrCodeCorrupt)
}

// IsInvalidError returns true if err reports a mistyped value.
func IsInvalidError(err error) bool {
	return hasCode(err, ErrCodeInvalid)
}

// ErrorCodeOf returns the code of err, or "" if err is not an *Error.
func ErrorCodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NewNotFound creates a reference error for a missing record of the given kind.
func NewNotFound(op, kind, id string) *Error {
	return &Error{
		Code:    ErrCodeReference,
		Op:      op,
		ID:      id,
		Message: kind + " not found",
		Details: map[string]string{"kind": kind},
	}
}

// NewStructural creates a structural error.
func NewStructural(op, id, message string) *Error {
	return &Error{Code: ErrCodeStructural, Op: op, ID: id, Message: message}
}

// NewDangling creates an error for a record whose target no longer exists.
func NewDangling(op, id, message string) *Error {
	return &Error{Code: ErrCodeDangling, Op: op, ID: id, Message: message}
}

// IsDanglingError returns true if err reports a dangling reference.
func IsDanglingError(err error) bool {
	return hasCode(err, ErrCodeDangling)
}

// NewCorrupt creates a corrupt-document error.
func NewCorrupt(op, message string) *Error {
	return &Error{Code: ErrCodeCorrupt, Op: op, Message: message}
}

// NewInvalid creates an invalid-value error.
func NewInvalid(op, id, message string) *Error {
	return &Error{Code: ErrCodeInvalid, Op: op, ID: id, Message: message}
}
