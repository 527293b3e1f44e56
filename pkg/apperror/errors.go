package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string            `json:"error_code"`
	Message    string            `json:"message"`
	HTTPStatus int               `json:"-"`
	Meta       map[string]string `json:"meta,omitempty"` // Reconcilable facts (tx hash, revert reason)
	Err        error             `json:"-"`              // Wrapped internal error (not exposed to client)
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

// WithMeta returns the error with an extra metadata entry attached.
func (e *AppError) WithMeta(key, value string) *AppError {
	if e.Meta == nil {
		e.Meta = make(map[string]string)
	}
	e.Meta[key] = value
	return e
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

// ---- Error codes ----

const (
	CodeWalletNotFound      = "WAL_001"
	CodeWalletExists        = "WAL_002"
	CodeCorruptedKeyStore   = "WAL_003"
	CodeWouldRevert         = "LED_001"
	CodeExecutionReverted   = "LED_002"
	CodeLedgerUnavailable   = "LED_003"
	CodeLedgerTimeout       = "LED_004"
	CodeReceiptDecodeFailed = "LED_005"
	CodeSubmissionRejected  = "LED_006"
	CodeConfirmationTimeout = "LED_007"
	CodeHashMismatch        = "APR_001"
	CodeTokenExpired        = "APR_002"
	CodeTokenConsumed       = "APR_003"
	CodeMalformedToken      = "APR_004"
	CodeNotApprover         = "APR_005"
	CodeLoanNotFound        = "LOAN_001"
	CodeInvalidTransition   = "LOAN_002"
	CodeOfferNotFound       = "OFFER_001"
	CodeAssetNotFound       = "ASSET_001"
	CodeMerchantNotFound    = "MER_001"
	CodeMerchantSuspended   = "MER_002"
	CodeValidation          = "VAL_001"
	CodeInvalidToken        = "AUTH_003"
	CodeRateLimitExceeded   = "RATE_001"
	CodeInternal            = "SYS_001"
)

// ---- Key custody (WAL) ----

func ErrWalletNotFound() *AppError {
	return New(CodeWalletNotFound, "Wallet not found", http.StatusNotFound)
}

func ErrWalletExists() *AppError {
	return New(CodeWalletExists, "Wallet already exists for merchant", http.StatusConflict)
}

func ErrCorruptedKeyStore(err error) *AppError {
	return Wrap(CodeCorruptedKeyStore, "Key store entry could not be decrypted", http.StatusInternalServerError, err)
}

// ---- Ledger (LED) ----

func ErrWouldRevert(reason string) *AppError {
	e := New(CodeWouldRevert, "Transaction would revert", http.StatusConflict)
	if reason != "" {
		e.WithMeta("reason", reason)
	}
	return e
}

func ErrExecutionReverted(txHash string) *AppError {
	return New(CodeExecutionReverted, "Transaction reverted on-chain", http.StatusConflict).
		WithMeta("tx_hash", txHash)
}

func ErrLedgerUnavailable(err error) *AppError {
	return Wrap(CodeLedgerUnavailable, "Ledger node unavailable", http.StatusBadGateway, err)
}

func ErrLedgerTimeout(err error) *AppError {
	return Wrap(CodeLedgerTimeout, "Ledger node timed out", http.StatusGatewayTimeout, err)
}

func ErrReceiptDecodeFailed(txHash, event string) *AppError {
	return New(CodeReceiptDecodeFailed, "Transaction mined but expected event missing; reconcile manually", http.StatusBadGateway).
		WithMeta("tx_hash", txHash).
		WithMeta("event", event)
}

func ErrSubmissionRejected(err error) *AppError {
	return Wrap(CodeSubmissionRejected, "Ledger node rejected the transaction", http.StatusBadGateway, err)
}

func ErrConfirmationTimeout(txHash string, err error) *AppError {
	return Wrap(CodeConfirmationTimeout, "Transaction submitted but not confirmed in time", http.StatusGatewayTimeout, err).
		WithMeta("tx_hash", txHash)
}

// ---- Approval tokens (APR) ----

func ErrHashMismatch() *AppError {
	return New(CodeHashMismatch, "Approval token does not match the committed hash", http.StatusForbidden)
}

func ErrTokenExpired() *AppError {
	return New(CodeTokenExpired, "Approval token expired", http.StatusForbidden)
}

func ErrTokenConsumed() *AppError {
	return New(CodeTokenConsumed, "Approval token has already been used", http.StatusConflict)
}

func ErrMalformedToken(err error) *AppError {
	return Wrap(CodeMalformedToken, "Malformed approval token", http.StatusBadRequest, err)
}

func ErrNotApprover() *AppError {
	return New(CodeNotApprover, "Approval token was not issued to this party", http.StatusForbidden)
}

// ---- Loans, offers, assets ----

func ErrLoanNotFound() *AppError {
	return New(CodeLoanNotFound, "Loan not found", http.StatusNotFound)
}

func ErrInvalidTransition(from, action string) *AppError {
	return New(CodeInvalidTransition, fmt.Sprintf("Cannot %s in state %s", action, from), http.StatusConflict)
}

func ErrOfferNotFound() *AppError {
	return New(CodeOfferNotFound, "Offer not found", http.StatusNotFound)
}

func ErrAssetNotFound() *AppError {
	return New(CodeAssetNotFound, "Asset not found", http.StatusNotFound)
}

// ---- Merchants ----

func ErrMerchantNotFound() *AppError {
	return New(CodeMerchantNotFound, "Merchant not found", http.StatusNotFound)
}

func ErrMerchantSuspended() *AppError {
	return New(CodeMerchantSuspended, "Merchant account is suspended", http.StatusForbidden)
}

// ---- Authentication & rate limiting ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a 400 validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// ---- Classification ----

// CodeOf returns the AppError code carried by err, or "" if none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// IsUnavailable reports whether err belongs to the Unavailable class.
func IsUnavailable(err error) bool {
	switch CodeOf(err) {
	case CodeLedgerUnavailable, CodeLedgerTimeout, CodeConfirmationTimeout:
		return true
	}
	return false
}

// IsRetryable reports whether the caller may retry the whole operation.
// Only Unavailable errors raised before any envelope was sent qualify. An
// error carrying a tx_hash came from the send path or the receipt wait, so
// the transaction may already be mined.
func IsRetryable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	if _, sent := appErr.Meta["tx_hash"]; sent {
		return false
	}
	switch appErr.Code {
	case CodeLedgerUnavailable, CodeLedgerTimeout:
		return true
	}
	return false
}
