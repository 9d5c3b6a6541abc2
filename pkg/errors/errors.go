package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeInvalidReq        = "INVALID_REQUEST"
	ErrCodeCredentialMissing = "CREDENTIAL_MISSING"
	ErrCodeGateCheck         = "GATE_CHECK_FAILURE"
	ErrCodeNoImageData       = "NO_IMAGE_DATA"
	ErrCodeNoVideoURI        = "NO_VIDEO_URI"
	ErrCodeRemoteCall        = "REMOTE_CALL_FAILURE"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeNoImage           = "NO_IMAGE"
	ErrCodeBusy              = "BUSY"
	ErrCodeStale             = "STALE_RESULT"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeNotFound          = "NOT_FOUND"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is reports whether any AppError in err's chain carries code.
func Is(err error, code string) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// CodeOf returns the code of the outermost AppError, or ErrCodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
