package interpreter

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeLex      ErrorCode = "LEX_ERROR"
	ErrCodeParse    ErrorCode = "PARSE_ERROR"
	ErrCodeRuntime  ErrorCode = "RUNTIME_ERROR"
	ErrCodeImport   ErrorCode = "IMPORT_ERROR"
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// ScriptError is returned by every stage of the interpreter. Line and Column
// are 1-based and only set for lexer and parser diagnostics.
type ScriptError struct {
	Code    ErrorCode
	Message string
	Line    int
	Column  int
	Cause   error
}

func (e *ScriptError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d, column %d)", msg, e.Line, e.Column)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *ScriptError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func lexError(line, col int, format string, args ...any) error {
	return &ScriptError{Code: ErrCodeLex, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}

func parseError(tok Token, format string, args ...any) error {
	return &ScriptError{Code: ErrCodeParse, Message: fmt.Sprintf(format, args...), Line: tok.Line, Column: tok.Column}
}

func runtimeError(format string, args ...any) error {
	return &ScriptError{Code: ErrCodeRuntime, Message: fmt.Sprintf(format, args...)}
}

func importError(path string, cause error) error {
	return &ScriptError{Code: ErrCodeImport, Message: fmt.Sprintf("cannot import %q", path), Cause: cause}
}

func wrapContextErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ScriptError{Code: ErrCodeCanceled, Message: "execution timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ScriptError{Code: ErrCodeCanceled, Message: "execution canceled", Cause: err}
	}
	return err
}

// ErrorCodeOf reports the code of a ScriptError anywhere in err's chain.
func ErrorCodeOf(err error) (ErrorCode, bool) {
	var se *ScriptError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}
