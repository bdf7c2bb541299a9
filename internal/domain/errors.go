package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Wrap them with NewDomainError or WrapOp to add context.
var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrTimeout      = fmt.Errorf("operation timed out")
	ErrRateLimit    = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid  = fmt.Errorf("authentication failed")
)

// Sentinel errors for the console.
var (
	ErrConfigLoad        = fmt.Errorf("failed to load configuration")
	ErrDecryption        = fmt.Errorf("decryption failed")
	ErrEncryption        = fmt.Errorf("encryption operation failed")
	ErrBackend           = fmt.Errorf("backend request failed")
	ErrUnavailable       = fmt.Errorf("backend unavailable")
	ErrDecode            = fmt.Errorf("payload decode failed")
	ErrInvalidPayload    = fmt.Errorf("payload failed validation")
	ErrNotConnected      = fmt.Errorf("push channel not connected")
	ErrEmptyCart         = fmt.Errorf("cart is empty")
	ErrInsufficientStock = fmt.Errorf("insufficient stock")
	ErrNoProduct         = fmt.Errorf("no product selected")
	ErrBusy              = fmt.Errorf("operation already in progress")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Backend.DeleteProduct")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// APIError is a non-2xx answer from the inventory backend. Message carries the
// server's own "message" field when the body had one.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// Unwrap maps the status onto the category sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == 401 || e.Status == 403:
		return ErrAuthInvalid
	case e.Status == 404:
		return ErrNotFound
	case e.Status == 400 || e.Status == 409 || e.Status == 422:
		return ErrInvalidInput
	case e.Status == 429:
		return ErrRateLimit
	case e.Status >= 500:
		return ErrUnavailable
	default:
		return ErrBackend
	}
}

// MessageOf returns the server-provided message carried by err, or fallback
// when the backend did not send one.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}

// ErrorCode is a machine-parseable error category for metrics and logs.
type ErrorCode string

const (
	CodeOK                ErrorCode = "OK"
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeRateLimit         ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid       ErrorCode = "AUTH_INVALID"
	CodeConfigLoad        ErrorCode = "CONFIG_LOAD"
	CodeDecryption        ErrorCode = "DECRYPTION"
	CodeEncryption        ErrorCode = "ENCRYPTION"
	CodeBackend           ErrorCode = "BACKEND"
	CodeUnavailable       ErrorCode = "UNAVAILABLE"
	CodeDecode            ErrorCode = "DECODE"
	CodeInvalidPayload    ErrorCode = "INVALID_PAYLOAD"
	CodeNotConnected      ErrorCode = "NOT_CONNECTED"
	CodeEmptyCart         ErrorCode = "EMPTY_CART"
	CodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"
	CodeNoProduct         ErrorCode = "NO_PRODUCT"
	CodeBusy              ErrorCode = "BUSY"
)

// errorCodeMap maps each sentinel to its code. Order of lookup in ErrorCodeOf
// goes through errorCodeOrder so specific sentinels win over categories.
var errorCodeMap = map[error]ErrorCode{
	ErrNotFound:          CodeNotFound,
	ErrInvalidInput:      CodeInvalidInput,
	ErrTimeout:           CodeTimeout,
	ErrRateLimit:         CodeRateLimit,
	ErrAuthInvalid:       CodeAuthInvalid,
	ErrConfigLoad:        CodeConfigLoad,
	ErrDecryption:        CodeDecryption,
	ErrEncryption:        CodeEncryption,
	ErrBackend:           CodeBackend,
	ErrUnavailable:       CodeUnavailable,
	ErrDecode:            CodeDecode,
	ErrInvalidPayload:    CodeInvalidPayload,
	ErrNotConnected:      CodeNotConnected,
	ErrEmptyCart:         CodeEmptyCart,
	ErrInsufficientStock: CodeInsufficientStock,
	ErrNoProduct:         CodeNoProduct,
	ErrBusy:              CodeBusy,
}

var errorCodeOrder = []error{
	ErrEmptyCart, ErrInsufficientStock, ErrNoProduct, ErrBusy,
	ErrDecode, ErrInvalidPayload, ErrNotConnected,
	ErrConfigLoad, ErrDecryption, ErrEncryption,
	ErrUnavailable, ErrAuthInvalid, ErrRateLimit, ErrTimeout,
	ErrNotFound, ErrInvalidInput, ErrBackend,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// A nil error maps to CodeOK; unknown errors map to CodeUnknown.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	for _, sentinel := range errorCodeOrder {
		if errors.Is(err, sentinel) {
			return errorCodeMap[sentinel]
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}
