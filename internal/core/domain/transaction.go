package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ContractCall is an unsigned call against a ledger contract.
// Zero GasLimit and nil GasPrice mean "use the signer defaults".
type ContractCall struct {
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
}

// SignedEnvelope is a fully assembled, signed transaction ready for submission.
// It is produced per call and must never be reused after a failed submission.
type SignedEnvelope struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
	ChainID  *big.Int
	Raw      []byte // RLP-encoded signed transaction
	Hash     common.Hash
}

// EventLog is a single log record emitted during execution.
type EventLog struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
	Index   uint
}

// Receipt is the ledger's confirmation record for a mined transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	BlockHash   common.Hash
	GasUsed     uint64
	Status      uint64 // 1 = success, 0 = reverted
	Logs        []EventLog
}

// Succeeded returns true if the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r.Status == 1
}

// DecodedEvent is the log entry matching a requested event signature.
// Indexed holds topics[1:] in declaration order.
type DecodedEvent struct {
	Signature string
	Topic     common.Hash
	Address   common.Address
	Indexed   []common.Hash
	Data      []byte
	LogIndex  uint
}

// IndexedBig returns indexed field i as an unsigned integer.
func (e *DecodedEvent) IndexedBig(i int) (*big.Int, bool) {
	if i < 0 || i >= len(e.Indexed) {
		return nil, false
	}
	return e.Indexed[i].Big(), true
}

// IndexedAddress returns indexed field i as an address.
func (e *DecodedEvent) IndexedAddress(i int) (common.Address, bool) {
	if i < 0 || i >= len(e.Indexed) {
		return common.Address{}, false
	}
	return common.BytesToAddress(e.Indexed[i].Bytes()), true
}
