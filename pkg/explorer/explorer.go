package explorer

import (
	"context"
	"errors"
)

var (
	// ErrRequestFailed is returned when the explorer cannot be reached at
	// the transport level. Failures of this kind are potentially transient.
	ErrRequestFailed = errors.New("explorer request failed")
	// ErrRequestRejected is returned when the explorer answers a request
	// with a non successful status.
	ErrRequestRejected = errors.New("explorer rejected request")
)

// Utxo represents an unspent transaction output of the wallet's address.
type Utxo interface {
	Hash() string
	Index() uint32
	Value() uint64
	IsConfirmed() bool
	BlockHeight() int
}

// Service is the representation of an explorer that allows to fetch the
// unspent outputs of an address and to broadcast signed transactions.
type Service interface {
	// GetUnspents fetches the utxos of the given address.
	GetUnspents(ctx context.Context, addr string) ([]Utxo, error)
	// BroadcastTransaction attempts to add the given tx in hex format to the
	// mempool and returns its tx hash.
	BroadcastTransaction(ctx context.Context, txHex string) (txid string, err error)
	// GetBlockHeight returns the number of blocks of the blockchain.
	GetBlockHeight(ctx context.Context) (int, error)
}
