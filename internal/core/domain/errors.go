package domain

import "errors"

var (
	// ErrKeyNotAvailable is returned by any operation needing the spending
	// key before custody has published it.
	ErrKeyNotAvailable = errors.New("spending key is not available")
	// ErrStoredSeedCorrupted is returned when the persisted seed phrase
	// cannot be decoded back to a valid mnemonic.
	ErrStoredSeedCorrupted = errors.New("stored seed phrase is corrupted")
	// ErrInsufficientFunds is returned when the confirmed balance does not
	// cover the requested amount plus the network fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAddress is returned when an address cannot be parsed for the
	// wallet's network.
	ErrInvalidAddress = errors.New("invalid address")
)
