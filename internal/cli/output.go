package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The operation was refused (bad state, validation, not found)
	ExitCommandError = 2 // Command error (bad flags, store unreachable, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode maps an error onto the short code printed in JSON output. The
// codes match the HTTP API's.
func ErrorCode(err error) string {
	switch {
	case domain.IsNotFound(err):
		return "ERR_NOT_FOUND"
	case errors.Is(err, domain.ErrStaleWrite):
		return "ERR_STALE_WRITE"
	case domain.IsConflict(err):
		return "ERR_INVALID_STATE"
	case errors.Is(err, domain.ErrInsufficientSupply):
		return "ERR_INSUFFICIENT_SUPPLY"
	case domain.IsUnprocessable(err):
		return "ERR_UNPROCESSABLE"
	case errors.Is(err, domain.ErrPrizeOvercommitted):
		return "ERR_PRIZE_OVERCOMMITTED"
	case domain.IsValidation(err):
		return "ERR_VALIDATION"
	}
	if GetExitCode(err) == ExitCommandError {
		return "ERR_COMMAND"
	}
	return "ERR_INTERNAL"
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success writes data as a JSON envelope, or calls text for human output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Error reports err in the configured format.
func (f *OutputFormatter) Error(err error) {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: ErrorCode(err), Message: err.Error()},
		})
		return
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %v\n", ErrorCode(err), err)
}
