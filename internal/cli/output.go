package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError carries the process exit code of a failed command.
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

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that are not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// wrapServiceError turns caller mistakes into ExitCommandError and everything
// else into ExitFailure.
func wrapServiceError(message string, err error) *ExitError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, asset.ErrInvalidRef),
		errors.Is(err, lineage.ErrInvalidDepth),
		errors.Is(err, usecase.ErrAssetNotFound),
		errors.Is(err, usecase.ErrNotFound):
		return WrapExitError(ExitCommandError, message, err)
	default:
		return WrapExitError(ExitFailure, message, err)
	}
}

// Response is the envelope written in json format.
type Response struct {
	Status string         `json:"status"`
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter writes command results as json or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Success writes data as a json envelope, or calls text for text output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer) error) error {
	if f.Format == FormatJSON {
		return f.writeJSON(Response{Status: "ok", Data: data})
	}
	if text == nil {
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	return text(f.Writer)
}

// Error reports err in the configured format.
func (f *OutputFormatter) Error(err error) error {
	code := GetExitCode(err)
	if f.Format == FormatJSON {
		return f.writeJSON(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: err.Error()},
		})
	}
	_, werr := fmt.Fprintf(f.errWriter(), "Error: %v\n", err)
	return werr
}

// VerboseLog writes to the error writer so json output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) writeJSON(v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	raw = append(raw, '\n')
	_, err = f.Writer.Write(raw)
	return err
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
