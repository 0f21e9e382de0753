package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Exit codes, one per pipeline stage that can fail. Scripts dispatch on
// these, so the mapping is part of the CLI contract.
const (
	ExitSuccess           = 0
	ExitParseError        = 1 // input parse, schema or structural failure
	ExitEngineError       = 2 // selection, constraint or ordering failure
	ExitWriteError        = 3 // artifact write failure
	ExitCriticalViolation = 4 // validation found a critical violation
)

// ExitError carries the process exit code alongside the error chain. Commands
// return one from RunE after rendering their own error output.
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

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError builds an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to an existing error.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error chain. Errors without an
// ExitError map to ExitParseError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitParseError
}

// NewTraceID generates a time-ordered id correlating a response with its
// diagnostics.
func NewTraceID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// OutputFormatter renders command results as plain text or as the JSON
// envelope. Each command invocation builds one formatter carrying that
// invocation's trace id.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; falls back to Writer when nil
	Verbose   bool
	TraceID   string
}

// CLIResponse is the JSON envelope shared by every command.
type CLIResponse struct {
	Status  string      `json:"status"` // "ok" or "error"
	Data    interface{} `json:"data,omitempty"`
	Error   *CLIError   `json:"error,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// CLIError pairs a stable error code (parser E0xx, engine E1xx) with a
// human-readable message.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success renders a successful result. Text mode prints the data as-is;
// strings render without quoting.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return f.emitJSON(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error renders a failure. Details appear in text mode only under --verbose.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return f.emitJSON(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) emitJSON(resp CLIResponse) error {
	resp.TraceID = f.TraceID
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog writes a diagnostic line when --verbose is set. Diagnostics go
// to ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
