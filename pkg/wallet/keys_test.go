package wallet

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
)

func TestDeriveSigningKeyPair(t *testing.T) {
	wallet, err := newTestWallet()
	if err != nil {
		t.Fatal(err)
	}
	opts := DeriveSigningKeyPairOpts{
		DerivationPath: "m/44'/0'/0'/0/0",
	}
	prvkey, pubkey, err := wallet.DeriveSigningKeyPair(opts)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotNil(t, prvkey)
	assert.NotNil(t, pubkey)
	assert.Equal(t, pubkey.SerializeCompressed(), prvkey.PubKey().SerializeCompressed())

	// Same mnemonic, same path, same keys.
	otherWallet, err := newTestWallet()
	if err != nil {
		t.Fatal(err)
	}
	otherPrvkey, otherPubkey, err := otherWallet.DeriveSigningKeyPair(opts)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, prvkey.Serialize(), otherPrvkey.Serialize())
	assert.Equal(t, pubkey.SerializeCompressed(), otherPubkey.SerializeCompressed())
}

func TestFailingDeriveSigningKeyPair(t *testing.T) {
	wallet, err := newTestWallet()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path string
		err  error
	}{
		{"", ErrNullDerivationPath},
		{"m/44'/0'/0'/0", ErrInvalidDerivationPathLength},
		{"m/44/0'/0'/0/0", ErrInvalidDerivationPathAccount},
	}
	for _, tt := range tests {
		_, _, err := wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
			DerivationPath: tt.path,
		})
		assert.Equal(t, tt.err, err)
	}
}

func TestDeriveAddress(t *testing.T) {
	wallet, err := newTestWallet()
	if err != nil {
		t.Fatal(err)
	}
	opts := DeriveAddressOpts{
		DerivationPath: "m/44'/0'/0'/0/0",
		Network:        &chaincfg.MainNetParams,
	}
	addr, err := wallet.DeriveAddress(opts)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, true, strings.HasPrefix(addr, "bc1q"))

	otherAddr, err := wallet.DeriveAddress(opts)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, addr, otherAddr)

	testnetAddr, err := wallet.DeriveAddress(DeriveAddressOpts{
		DerivationPath: opts.DerivationPath,
		Network:        &chaincfg.TestNet3Params,
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, true, strings.HasPrefix(testnetAddr, "tb1q"))
	assert.NotEqual(t, addr, testnetAddr)
}

func TestFailingDeriveAddress(t *testing.T) {
	wallet, err := newTestWallet()
	if err != nil {
		t.Fatal(err)
	}
	_, err = wallet.DeriveAddress(DeriveAddressOpts{
		DerivationPath: "m/44'/0'/0'/0/0",
	})
	assert.Equal(t, ErrNullNetwork, err)
}
