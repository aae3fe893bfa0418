package domain

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// KeyStatus enumerates the states of the key custody machine. The state
// starts Unknown and transitions exactly once, to Present on a successful
// load-or-create or to Error on an unrecoverable custody failure. Both are
// terminal until process restart.
type KeyStatus int

const (
	KeyStatusUnknown KeyStatus = iota
	KeyStatusPresent
	KeyStatusError
)

func (s KeyStatus) String() string {
	switch s {
	case KeyStatusPresent:
		return "present"
	case KeyStatusError:
		return "error"
	default:
		return "unknown"
	}
}

// SpendingKey is the wallet's one derived key: the public half of the
// keypair, the P2WPKH address encoding of it and the derivation path it was
// derived with. The private material never leaves the wallet that derived
// it; this value is re-derived fresh from the seed on every cold start and
// never persisted.
type SpendingKey struct {
	PublicKey      *btcec.PublicKey
	Address        string
	DerivationPath string
}

// KeyState is the tagged state of key custody. Key is non-nil if and only if
// Status is Present; Err is non-nil if and only if Status is Error.
type KeyState struct {
	Status KeyStatus
	Key    *SpendingKey
	Err    error
}
