package ledger

import (
	"context"
	"errors"
	"strings"

	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Geth reports reverted calls and estimates with this JSON-RPC code.
const revertErrorCode = 3

// classify maps a node error from a read or estimate onto the AppError taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrLedgerTimeout(err)
	}
	if reason, ok := revertReason(err); ok {
		return apperror.ErrWouldRevert(reason)
	}
	return apperror.ErrLedgerUnavailable(err)
}

// classifySend maps a SendTransaction error. A JSON-RPC error means the node
// answered and refused the envelope.
func classifySend(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrLedgerTimeout(err)
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return apperror.ErrSubmissionRejected(err)
	}
	return apperror.ErrLedgerUnavailable(err)
}

// revertReason reports whether err is an execution revert and extracts the
// reason string when the node returned one.
func revertReason(err error) (string, bool) {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return "", false
	}
	msg := rpcErr.Error()
	if rpcErr.ErrorCode() != revertErrorCode && !strings.Contains(strings.ToLower(msg), "execution reverted") {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := unpackRevertData(dataErr.ErrorData()); ok {
			return reason, true
		}
	}

	if i := strings.Index(msg, "execution reverted: "); i >= 0 {
		return strings.TrimSpace(msg[i+len("execution reverted: "):]), true
	}
	return "", true
}

func unpackRevertData(data interface{}) (string, bool) {
	var raw []byte
	switch v := data.(type) {
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return "", false
		}
		raw = b
	case []byte:
		raw = v
	default:
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}
