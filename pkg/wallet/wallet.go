package wallet

import (
	"errors"
)

var (
	// ErrNullNetwork ...
	ErrNullNetwork = errors.New("network params are null")
	// ErrNullSigningMnemonic ...
	ErrNullSigningMnemonic = errors.New("signing mnemonic is null")
	// ErrNullSigningMasterKey ...
	ErrNullSigningMasterKey = errors.New("signing master key is null")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullOutputAddress ...
	ErrNullOutputAddress = errors.New("output address must not be null")
	// ErrNullChangeAddress ...
	ErrNullChangeAddress = errors.New("change address must not be null")

	// ErrInvalidSigningMnemonic ...
	ErrInvalidSigningMnemonic = errors.New("signing mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidEntropy ...
	ErrInvalidEntropy = errors.New("entropy must be 16 bytes")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrInvalidDerivationPathLength ...
	ErrInvalidDerivationPathLength = errors.New(
		"derivation path must be an absolute path in the form " +
			"\"m/purpose'/coin'/account'/change/index\"",
	)
	// ErrInvalidDerivationPathAccount ...
	ErrInvalidDerivationPathAccount = errors.New(
		"derivation path's purpose, coin and account elems must be hardened " +
			"(suffix \"'\")",
	)
	// ErrInvalidOutputAddress ...
	ErrInvalidOutputAddress = errors.New("output address must be a valid address")
	// ErrInvalidChangeAddress ...
	ErrInvalidChangeAddress = errors.New("change address must be a valid address")
	// ErrInvalidUnspent ...
	ErrInvalidUnspent = errors.New("unspent hash must be a 32 byte hash in hex format")

	// ErrZeroOutputAmount ...
	ErrZeroOutputAmount = errors.New("output amount must not be zero")

	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"must start with 'm/' for absolute paths",
	)
)

// Wallet data structure allows to create a new wallet from seed/mnemonic,
// derive the spending key pair and its address, and use those keys to sign
// transactions
type Wallet struct {
	signingMnemonic  []string
	signingMasterKey []byte
}

// NewWalletOpts is the struct given to the NewWallet method
type NewWalletOpts struct {
	EntropySize int
}

func (o NewWalletOpts) validate() error {
	if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewWallet creates a new wallet holding a signing mnemonic generated from
// fresh random entropy
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	signingMnemonic, err := generateMnemonic(opts.EntropySize)
	if err != nil {
		return nil, err
	}

	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		SigningMnemonic: signingMnemonic,
	})
}

// NewWalletFromMnemonicOpts is the struct given to the NewWalletFromMnemonic method
type NewWalletFromMnemonicOpts struct {
	SigningMnemonic []string
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(o.SigningMnemonic) <= 0 {
		return ErrNullSigningMnemonic
	}
	if !isMnemonicValid(o.SigningMnemonic) {
		return ErrInvalidSigningMnemonic
	}
	return nil
}

// NewWalletFromMnemonic generates the signing seed and master key from the
// mnemonic provided. The BIP39 passphrase is always empty.
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	signingSeed := generateSeedFromMnemonic(opts.SigningMnemonic)
	signingMasterKey, err := generateSigningMasterKey(signingSeed)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		signingMnemonic:  opts.SigningMnemonic,
		signingMasterKey: signingMasterKey,
	}, nil
}

func (w *Wallet) validate() error {
	if len(w.signingMasterKey) <= 0 {
		return ErrNullSigningMasterKey
	}
	if len(w.signingMnemonic) <= 0 {
		return ErrNullSigningMnemonic
	}
	if !isMnemonicValid(w.signingMnemonic) {
		return ErrInvalidSigningMnemonic
	}
	return nil
}

// SigningMnemonic is getter for the signing mnemonic
func (w *Wallet) SigningMnemonic() ([]string, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	return w.signingMnemonic, nil
}
