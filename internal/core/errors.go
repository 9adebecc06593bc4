package core

// Error codes for domain errors surfaced to clients.
const (
	ErrCodeAuthRequired  = "auth_required"
	ErrCodeAlreadyPaired = "already_paired"
	ErrCodeBadRequest    = "bad_request"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
