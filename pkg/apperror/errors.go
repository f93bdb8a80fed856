package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can use errors.Is against the constructors.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of e carrying the given details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Ledger (WLT) ----

const (
	CodeInvalidAmount       = "WLT_001"
	CodeWalletNotFound      = "WLT_002"
	CodeInsufficientBalance = "WLT_003"
	CodeInvalidArgument     = "WLT_004"
	CodeDependentFailed     = "WLT_005"
)

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrWalletNotFound(userID string) *AppError {
	return New(CodeWalletNotFound, fmt.Sprintf("Wallet not found for user %s", userID), http.StatusNotFound)
}

// ErrSelfTransfer is reported as a wallet-not-found condition; clients see the WLT_002 code.
func ErrSelfTransfer() *AppError {
	return New(CodeWalletNotFound, "Sender and recipient wallet cannot be the same", http.StatusNotFound)
}

// ErrInsufficientBalance carries the required and available amounts as strings.
func ErrInsufficientBalance(required, available string) *AppError {
	e := New(CodeInsufficientBalance, "Insufficient balance in wallet", http.StatusBadRequest)
	e.Details = map[string]any{
		"required":  required,
		"available": available,
	}
	return e
}

func ErrInvalidArgument(message string) *AppError {
	return New(CodeInvalidArgument, message, http.StatusBadRequest)
}

// ErrDependentOperationFailed marks a post-commit step that failed without
// affecting the primary operation.
func ErrDependentOperationFailed(step string, err error) *AppError {
	e := Wrap(CodeDependentFailed, "Dependent operation failed", http.StatusInternalServerError, err)
	e.Details = map[string]any{"step": step}
	return e
}

// ---- Users (USR) ----

func ErrUserExists() *AppError {
	return New("USR_001", "Username or email already exists", http.StatusConflict)
}

func ErrUserNotFound() *AppError {
	return New("USR_002", "User not found", http.StatusNotFound)
}

func ErrInvalidCredentials() *AppError {
	return New("USR_003", "Invalid credentials", http.StatusUnauthorized)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New(CodeInvalidArgument, message, http.StatusBadRequest)
}
