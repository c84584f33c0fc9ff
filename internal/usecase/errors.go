package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorNotConfigured ErrorCode = "NOT_CONFIGURED"
	ErrorUpstream      ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

// Client-facing error messages.
const (
	MsgInvalidJSON      = "Invalid JSON"
	MsgInvalidPromptKey = "Invalid promptKey"
	MsgInvalidMessages  = "messages must be an array of 1-20 items"
	MsgInvalidMessage   = "Each message must have role (user/assistant) and content"
	MsgNotConfigured    = "API key not configured"
	MsgInternal         = "Something went wrong. Try again."
)

// Error is a classified failure. Message is safe to return to the caller;
// Reason and Err are for logs.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

func invalidInput(reason, message string) *Error {
	return newError(ErrorInvalidInput, reason, message, nil)
}
