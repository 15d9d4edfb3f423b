package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/daylog/internal/logger"
)

// UserError carries a message meant for the status line alongside the
// underlying cause, which only goes to the log.
type UserError struct {
	Msg string
	Err error
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Userf wraps err with a user-visible status message.
func Userf(err error, format string, args ...interface{}) error {
	return &UserError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// Status returns the text shown to the user for err. A UserError anywhere in
// the chain wins over the raw error text.
func Status(err error) string {
	if err == nil {
		return ""
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue.Msg
	}
	return err.Error()
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", Status(err))
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
