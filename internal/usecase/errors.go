package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

// Caller-facing error messages.
const (
	MsgEmptyMessage        = "Message cannot be empty"
	MsgMissingUploadFields = "Missing required fields: filename and file_content"
	MsgUnsupportedFileType = "File type not supported"
	MsgInvalidEncoding     = "Invalid file content encoding"
	MsgFileTooLarge        = "File size exceeds 10MB limit"
	MsgInternalServerError = "Internal server error"
)

// Error is the typed failure returned by the pipelines. Message is safe to
// show to the caller; Reason and Err are for logs only.
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

func invalidInput(reason, message string) *Error {
	return &Error{Code: ErrorInvalidInput, Reason: reason, Message: message}
}

func internalError(reason string, err error) *Error {
	return &Error{Code: ErrorInternal, Reason: reason, Message: MsgInternalServerError, Err: err}
}
