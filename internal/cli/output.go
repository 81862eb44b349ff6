package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Invalid document, rejected operation or failed scenario
	ExitCommandError = 2 // Bad arguments, unreadable files, unavailable store
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// ExitErrors map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope every command writes under --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failed command. Document errors keep their
// category, operation and record id; library errors keep the CUE field
// and position.
type CLIError struct {
	Code    string            `json:"code"` // E-code, see codes.go
	Message string            `json:"message"`
	Kind    string            `json:"kind,omitempty"` // REFERENCE, STRUCTURAL, DANGLING, CORRUPT, INVALID
	Op      string            `json:"op,omitempty"`
	ID      string            `json:"id,omitempty"`
	Field   string            `json:"field,omitempty"`
	Pos     string            `json:"pos,omitempty"` // file:line:column
	Details map[string]string `json:"details,omitempty"`
}

// textRenderer is implemented by command results that have a text form.
type textRenderer interface {
	renderText(w io.Writer) error
}

// rawJSON is pre-encoded JSON output, such as a page document or a
// component envelope. It is embedded as-is in the JSON envelope and
// printed verbatim as text.
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	return json.RawMessage(r).MarshalJSON()
}

func (r rawJSON) renderText(w io.Writer) error {
	if _, err := w.Write(r); err != nil {
		return err
	}
	if len(r) > 0 && r[len(r)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// OutputFormatter writes command results and failures as JSON or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; keeps JSON on Writer parseable
	Verbose   bool
}

// Success writes a command result.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if r, ok := data.(textRenderer); ok {
		return r.renderText(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(exitCode int, message string, err error) error {
	cliErr := newCLIError(message, err)
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Error: cliErr})
	} else {
		f.writeTextError(cliErr)
	}
	return WrapExitError(exitCode, message, err)
}

func (f *OutputFormatter) writeTextError(e *CLIError) {
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
	if !f.Verbose {
		return
	}
	if e.Kind != "" {
		fmt.Fprintf(f.Writer, "  kind: %s\n", e.Kind)
	}
	if e.Op != "" {
		fmt.Fprintf(f.Writer, "  op:   %s\n", e.Op)
	}
	if e.ID != "" {
		fmt.Fprintf(f.Writer, "  id:   %s\n", e.ID)
	}
	if e.Pos != "" {
		fmt.Fprintf(f.Writer, "  at:   %s (%s)\n", e.Pos, e.Field)
	}
}

// VerboseLog writes a diagnostic line under --verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter, or Writer if none is set.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
