package wallet

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pocket-wallet/pocketd/pkg/explorer"
)

// NewSendTransactionOpts is the struct given to NewSendTransaction method
type NewSendTransactionOpts struct {
	Unspents       []explorer.Utxo
	OutputAddress  string
	OutputAmount   uint64
	ChangeAddress  string
	DerivationPath string
	Network        *chaincfg.Params
}

func (o NewSendTransactionOpts) validate() error {
	if o.Network == nil {
		return ErrNullNetwork
	}

	if o.OutputAmount == 0 {
		return ErrZeroOutputAmount
	}
	if len(o.OutputAddress) <= 0 {
		return ErrNullOutputAddress
	}
	if _, err := decodeAddressScript(o.OutputAddress, o.Network); err != nil {
		return ErrInvalidOutputAddress
	}

	if len(o.ChangeAddress) <= 0 {
		return ErrNullChangeAddress
	}
	if _, err := decodeAddressScript(o.ChangeAddress, o.Network); err != nil {
		return ErrInvalidChangeAddress
	}

	for _, u := range o.Unspents {
		if _, err := chainhash.NewHashFromStr(u.Hash()); err != nil {
			return ErrInvalidUnspent
		}
	}

	derivationPath, err := ParseDerivationPath(o.DerivationPath)
	if err != nil {
		return err
	}
	return checkDerivationPath(derivationPath)
}

// NewSendTransaction crafts a transaction spending the provided unspents:
// one output paying OutputAmount to OutputAddress, plus a change output to
// ChangeAddress whenever the inputs exceed amount and fee. A remainder that
// does not exceed the fee of carrying its own output is forfeited to the
// miners rather than surfaced as an error. Every input is signed with the key
// at the provided derivation path using SIGHASH_ALL. The signed transaction
// is returned in hex format along with the fee it pays.
func (w *Wallet) NewSendTransaction(opts NewSendTransactionOpts) (string, uint64, error) {
	if err := opts.validate(); err != nil {
		return "", 0, err
	}
	if err := w.validate(); err != nil {
		return "", 0, err
	}

	totalInput := uint64(0)
	for _, u := range opts.Unspents {
		totalInput += u.Value()
	}

	// The fee depends on whether a change output is added, the same feedback
	// rule used when selecting the unspents.
	numOutputs := 1
	fee := EstimateFeeAmount(len(opts.Unspents), numOutputs)
	if totalInput > opts.OutputAmount+fee {
		numOutputs = 2
		fee = EstimateFeeAmount(len(opts.Unspents), numOutputs)
	}
	var change uint64
	if totalInput > opts.OutputAmount+fee {
		change = totalInput - opts.OutputAmount - fee
	}
	if change == 0 && totalInput > opts.OutputAmount {
		// no change output, the whole remainder goes to the miners
		fee = totalInput - opts.OutputAmount
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, u := range opts.Unspents {
		hash, _ := chainhash.NewHashFromStr(u.Hash())
		outpoint := wire.NewOutPoint(hash, u.Index())
		tx.AddTxIn(wire.NewTxIn(outpoint, nil, nil))
	}

	outScript, _ := decodeAddressScript(opts.OutputAddress, opts.Network)
	tx.AddTxOut(wire.NewTxOut(int64(opts.OutputAmount), outScript))
	if change > 0 {
		changeScript, _ := decodeAddressScript(opts.ChangeAddress, opts.Network)
		tx.AddTxOut(wire.NewTxOut(int64(change), changeScript))
	}

	if err := w.signTransaction(tx, opts); err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(buf.Bytes()), fee, nil
}

// signTransaction attaches a P2WPKH witness to every input of the
// transaction. All inputs are locked by the script of the wallet's one
// address, so a single key pair signs them all.
func (w *Wallet) signTransaction(tx *wire.MsgTx, opts NewSendTransactionOpts) error {
	if len(opts.Unspents) <= 0 {
		return nil
	}

	privateKey, publicKey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: opts.DerivationPath,
	})
	if err != nil {
		return err
	}

	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(publicKey.SerializeCompressed()), opts.Network,
	)
	if err != nil {
		return err
	}
	prevScript, err := txscript.PayToAddrScript(p2wpkh)
	if err != nil {
		return err
	}

	prevOuts := txscript.NewMultiPrevOutFetcher(nil)
	for i, u := range opts.Unspents {
		prevOuts.AddPrevOut(
			tx.TxIn[i].PreviousOutPoint,
			wire.NewTxOut(int64(u.Value()), prevScript),
		)
	}

	sigHashes := txscript.NewTxSigHashes(tx, prevOuts)
	for i, u := range opts.Unspents {
		witness, err := txscript.WitnessSignature(
			tx, sigHashes, i, int64(u.Value()), prevScript,
			txscript.SigHashAll, privateKey, true,
		)
		if err != nil {
			return err
		}
		tx.TxIn[i].Witness = witness
	}

	return nil
}

func decodeAddressScript(addr string, net *chaincfg.Params) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, net)
	if err != nil {
		return nil, err
	}
	if !decoded.IsForNet(net) {
		return nil, ErrInvalidOutputAddress
	}
	return txscript.PayToAddrScript(decoded)
}
