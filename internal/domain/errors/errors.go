package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidPhoneNumber  = errors.New("invalid phone number")
	ErrInvalidPurpose      = errors.New("invalid verification purpose")
	ErrCooldownActive      = errors.New("verification cooldown active")
	ErrDailyLimitExceeded  = errors.New("daily verification limit exceeded")
	ErrCodeExpired         = errors.New("verification code expired")
	ErrCodeInvalid         = errors.New("verification code invalid")
	ErrMaxAttemptsExceeded = errors.New("verification attempts exceeded")
)

// Error codes returned to API clients
const (
	CodeBadRequest     = "ERR_BAD_REQUEST"
	CodeUnauthorized   = "ERR_UNAUTHORIZED"
	CodeForbidden      = "ERR_FORBIDDEN"
	CodeNotFound       = "ERR_NOT_FOUND"
	CodeConflict       = "ERR_CONFLICT"
	CodeInvalidPhone   = "ERR_INVALID_PHONE"
	CodeInvalidPurpose = "ERR_INVALID_PURPOSE"
	CodeCooldownActive = "ERR_COOLDOWN_ACTIVE"
	CodeDailyLimit     = "ERR_DAILY_LIMIT"
	CodeCodeExpired    = "ERR_CODE_EXPIRED"
	CodeCodeInvalid    = "ERR_CODE_INVALID"
	CodeMaxAttempts    = "ERR_MAX_ATTEMPTS"
	CodeInternal       = "ERR_INTERNAL"
)

// CooldownActiveError reports how long the caller has to wait before a
// new code can be issued for the same phone number and purpose.
type CooldownActiveError struct {
	RetryAfter time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("verification cooldown active, retry in %ds", e.RetryAfterSeconds())
}

func (e *CooldownActiveError) Unwrap() error { return ErrCooldownActive }

// RetryAfterSeconds returns the remaining cooldown rounded up to whole seconds
func (e *CooldownActiveError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// CodeInvalidError reports a failed code comparison and how many
// attempts remain before the record is locked.
type CodeInvalidError struct {
	AttemptsRemaining int
}

func (e *CodeInvalidError) Error() string {
	return fmt.Sprintf("verification code invalid, %d attempts remaining", e.AttemptsRemaining)
}

func (e *CodeInvalidError) Unwrap() error { return ErrCodeInvalid }

// AppError represents an application error carried to the HTTP layer
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func TooManyRequests(code, message string, err error) *AppError {
	return NewAppError(http.StatusTooManyRequests, code, message, err)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}
