package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/canvas/internal/library"
	"github.com/roach88/canvas/internal/model"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No input files found
	ErrCodeLoadFailed  = "E004" // Store or config could not be opened
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File or store write error

	// Document and model errors
	ErrCodeCorrupt    = "E201" // Document violates the schema or tree invariants
	ErrCodeReference  = "E202" // Unknown page, element, component, variant or prop
	ErrCodeStructural = "E203" // Illegal tree shape
	ErrCodeInvalid    = "E204" // Invalid argument or value
	ErrCodeDangling   = "E205" // Instance refers to a deleted component

	// Library errors
	ErrCodeLibrary = "E301" // CUE component library does not compile

	// Scenario errors
	ErrCodeScenario = "E401" // Scenario file is malformed
)

// ErrorCode maps an error to its CLI error code.
func ErrorCode(err error) string {
	var compileErr *library.CompileError
	if errors.As(err, &compileErr) {
		return ErrCodeLibrary
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound
	}
	switch model.ErrorCodeOf(err) {
	case model.ErrCodeCorrupt:
		return ErrCodeCorrupt
	case model.ErrCodeReference:
		return ErrCodeReference
	case model.ErrCodeStructural:
		return ErrCodeStructural
	case model.ErrCodeInvalid:
		return ErrCodeInvalid
	case model.ErrCodeDangling:
		return ErrCodeDangling
	}
	return ErrCodeGeneric
}

// newCLIError describes err for output, keeping the structure of model
// and library errors.
func newCLIError(message string, err error) *CLIError {
	out := &CLIError{
		Code:    ErrorCode(err),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var compileErr *library.CompileError
	if errors.As(err, &compileErr) {
		out.Field = compileErr.Field
		if compileErr.Pos.IsValid() {
			out.Pos = fmt.Sprintf("%s:%d:%d", compileErr.Pos.Filename(), compileErr.Pos.Line(), compileErr.Pos.Column())
		}
		return out
	}
	var modelErr *model.Error
	if errors.As(err, &modelErr) {
		out.Kind = string(modelErr.Code)
		out.Op = modelErr.Op
		out.ID = modelErr.ID
		out.Details = modelErr.Details
	}
	return out
}
