package apperr

import (
	"errors"
	"net/http"
)

// Error is a domain error that knows which HTTP status and code it maps to.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so sentinel comparisons survive wrapping with a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: e.Message, Err: cause}
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: msg, Err: e.Err}
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, "CONFLICT", message)
}

func Upstream(message string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "UPSTREAM_ERROR", Message: message, Err: cause}
}

func Unavailable(message string) *Error {
	return New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
}

var (
	ErrInsufficientCredits       = New(http.StatusForbidden, "INSUFFICIENT_CREDITS", "Insufficient credits")
	ErrInvalidAudio              = New(http.StatusBadRequest, "INVALID_AUDIO", "Invalid audio data")
	ErrInsufficientResponse      = New(http.StatusBadRequest, "INSUFFICIENT_RESPONSE", "Response too short. Please provide a more detailed answer.")
	ErrTranscriptionFailure      = New(http.StatusInternalServerError, "TRANSCRIPTION_FAILED", "Failed to transcribe audio")
	ErrEvaluationFailure         = New(http.StatusInternalServerError, "EVALUATION_FAILED", "Failed to evaluate response")
	ErrQuestionGeneration        = New(http.StatusInternalServerError, "QUESTION_GENERATION_FAILED", "Failed to generate interview question")
	ErrInvalidPlan               = New(http.StatusBadRequest, "INVALID_PLAN", "Invalid plan selected")
	ErrPaymentVerificationFailed = New(http.StatusBadRequest, "PAYMENT_VERIFICATION_FAILED", "Payment verification failed")
	ErrPaymentAlreadyProcessed   = New(http.StatusConflict, "PAYMENT_ALREADY_PROCESSED", "Payment has already been processed")
	ErrInvalidCredentials        = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrDuplicateEmail            = New(http.StatusConflict, "DUPLICATE_EMAIL", "User already exists with this email")
	ErrVersionConflict           = New(http.StatusConflict, "VERSION_CONFLICT", "Interview was modified concurrently, please retry")
	ErrSessionBusy               = New(http.StatusConflict, "SESSION_BUSY", "Interview is being updated by another request")
	ErrInvalidOTP                = New(http.StatusBadRequest, "INVALID_OTP", "Invalid or expired verification code")
	ErrOTPThrottled              = New(http.StatusTooManyRequests, "OTP_THROTTLED", "Please wait before requesting another code")
	ErrInvalidToken              = New(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	ErrNotFound                  = NotFound("Resource not found")
)

// StatusOf reports the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
