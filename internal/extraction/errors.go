package extraction

import "fmt"

// ErrorCode identifies a class of extraction failure.
type ErrorCode string

const (
	ErrServiceUnavailable ErrorCode = "EXTRACTION_SERVICE_UNAVAILABLE"
	ErrJobFailed          ErrorCode = "EXTRACTION_JOB_FAILED"
	ErrJobTimeout         ErrorCode = "EXTRACTION_JOB_TIMEOUT"
	ErrEmptyContent       ErrorCode = "EXTRACTION_EMPTY_CONTENT"
	ErrMalformedOutput    ErrorCode = "MALFORMED_MODEL_OUTPUT"
	ErrInvalidDocument    ErrorCode = "INVALID_DOCUMENT"
)

// Error is a structured error for extraction and classification failures.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether retrying the same call could succeed.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// truncate bounds model output included in logs.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
