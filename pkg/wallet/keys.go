package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// DeriveSigningKeyPairOpts is the struct given to DeriveSigningKeyPair method
type DeriveSigningKeyPairOpts struct {
	DerivationPath string
}

func (o DeriveSigningKeyPairOpts) validate() error {
	derivationPath, err := ParseDerivationPath(o.DerivationPath)
	if err != nil {
		return err
	}

	return checkDerivationPath(derivationPath)
}

// DeriveSigningKeyPair derives the key pair of the provided derivation path
func (w *Wallet) DeriveSigningKeyPair(opts DeriveSigningKeyPairOpts) (
	*btcec.PrivateKey,
	*btcec.PublicKey,
	error,
) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if err := w.validate(); err != nil {
		return nil, nil, err
	}

	hdNode, err := hdkeychain.NewKeyFromString(
		base58.Encode(w.signingMasterKey),
	)
	if err != nil {
		return nil, nil, err
	}

	derivationPath, _ := ParseDerivationPath(opts.DerivationPath)
	for _, step := range derivationPath {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, nil, err
		}
	}

	privateKey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := hdNode.ECPubKey()
	if err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// DeriveAddressOpts is the struct given to DeriveAddress method
type DeriveAddressOpts struct {
	DerivationPath string
	Network        *chaincfg.Params
}

func (o DeriveAddressOpts) validate() error {
	derivationPath, err := ParseDerivationPath(o.DerivationPath)
	if err != nil {
		return err
	}
	if err := checkDerivationPath(derivationPath); err != nil {
		return err
	}

	if o.Network == nil {
		return ErrNullNetwork
	}

	return nil
}

// DeriveAddress derives the spending pubkey of the provided derivation path
// and returns its P2WPKH address encoding for the given network
func (w *Wallet) DeriveAddress(opts DeriveAddressOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	_, pubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: opts.DerivationPath,
	})
	if err != nil {
		return "", err
	}

	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pubkey.SerializeCompressed()), opts.Network,
	)
	if err != nil {
		return "", err
	}

	return p2wpkh.EncodeAddress(), nil
}
