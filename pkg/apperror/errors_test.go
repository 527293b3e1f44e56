package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("WAL_001", "Wallet not found", http.StatusNotFound),
			expected: "[WAL_001] Wallet not found",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, New("WAL_001", "test", http.StatusNotFound).Unwrap())
}

func TestTaxonomyStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"wallet not found", ErrWalletNotFound(), CodeWalletNotFound, http.StatusNotFound},
		{"wallet exists", ErrWalletExists(), CodeWalletExists, http.StatusConflict},
		{"corrupted", ErrCorruptedKeyStore(errors.New("tag")), CodeCorruptedKeyStore, http.StatusInternalServerError},
		{"would revert", ErrWouldRevert("loan not pending"), CodeWouldRevert, http.StatusConflict},
		{"reverted", ErrExecutionReverted("0xabc"), CodeExecutionReverted, http.StatusConflict},
		{"unavailable", ErrLedgerUnavailable(errors.New("dial")), CodeLedgerUnavailable, http.StatusBadGateway},
		{"timeout", ErrLedgerTimeout(errors.New("deadline")), CodeLedgerTimeout, http.StatusGatewayTimeout},
		{"decode failed", ErrReceiptDecodeFailed("0xabc", "LoanRequested"), CodeReceiptDecodeFailed, http.StatusBadGateway},
		{"hash mismatch", ErrHashMismatch(), CodeHashMismatch, http.StatusForbidden},
		{"expired", ErrTokenExpired(), CodeTokenExpired, http.StatusForbidden},
		{"consumed", ErrTokenConsumed(), CodeTokenConsumed, http.StatusConflict},
		{"validation", Validation("bad"), CodeValidation, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestMetaCarriesTxHash(t *testing.T) {
	err := ErrReceiptDecodeFailed("0xdeadbeef", "DiamondRegistered")
	assert.Equal(t, "0xdeadbeef", err.Meta["tx_hash"])
	assert.Equal(t, "DiamondRegistered", err.Meta["event"])

	assert.Empty(t, ErrWouldRevert("").Meta)
	assert.Equal(t, "loan not pending", ErrWouldRevert("loan not pending").Meta["reason"])
}

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("approve: %w", ErrLedgerTimeout(errors.New("deadline")))

	assert.True(t, IsCode(wrapped, CodeLedgerTimeout))
	assert.True(t, IsUnavailable(wrapped))
	assert.True(t, IsRetryable(wrapped))

	confirm := ErrConfirmationTimeout("0x01", errors.New("deadline"))
	assert.True(t, IsUnavailable(confirm))
	assert.False(t, IsRetryable(confirm), "post-submission ambiguity must not be retried")

	sent := fmt.Errorf("offer: %w", ErrLedgerTimeout(errors.New("deadline")).WithMeta("tx_hash", "0x03"))
	assert.True(t, IsUnavailable(sent))
	assert.False(t, IsRetryable(sent), "a send that may have reached the node must not be retried")
	assert.True(t, IsRetryable(ErrLedgerUnavailable(errors.New("dial tcp: refused"))))

	assert.False(t, IsUnavailable(ErrExecutionReverted("0x02")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}
