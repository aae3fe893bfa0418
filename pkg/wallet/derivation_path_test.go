package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/assert"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		input  string
		output DerivationPath
		err    error
	}{
		// Plain absolute derivation paths
		{"m/44'/0'/0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart + 44, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0, 0}, nil},
		{"m/44'/1'/0'/0/128", DerivationPath{hdkeychain.HardenedKeyStart + 44, hdkeychain.HardenedKeyStart + 1, hdkeychain.HardenedKeyStart, 0, 128}, nil},
		{"m/2147483692/2147483648/2147483648/0/0", DerivationPath{hdkeychain.HardenedKeyStart + 44, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0, 0}, nil},

		// Hexadecimal absolute derivation paths
		{"m/0x2c'/0x00'/0x00'/0x00/0x00", DerivationPath{hdkeychain.HardenedKeyStart + 44, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0, 0}, nil},

		// Whitespace tolerance
		{"	m  /   44			'\n/\n   00	\n\n\t'   /\n0 ' /\t\t	0/0", DerivationPath{hdkeychain.HardenedKeyStart + 44, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0, 0}, nil},

		// Relative derivation paths
		{"44'/0'/0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart + 44, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0, 0}, nil},
		{"0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart, 0, 0}, nil},
		{"0/0", DerivationPath{0, 0}, nil},

		// Invalid derivation paths
		{"", nil, ErrNullDerivationPath},                     // Empty relative derivation path
		{"m", nil, ErrMalformedDerivationPath},               // Empty absolute derivation path
		{"m/", nil, ErrMalformedDerivationPath},              // Missing last derivation component
		{"/44'/0'/0'/0/0", nil, ErrMalformedDerivationPath},  // Absolute path without m prefix, might be user error
		{"m/2147483648'", nil, nil},                          // Overflows 32 bit integer (dynamic values on error, not constant)
		{"m/-1'", nil, nil},                                  // Cannot contain negative number (dynamic values on error, not constant)
		{"0", nil, ErrMalformedDerivationPath},               // Bad derivation path
	}
	for _, tt := range tests {
		path, err := ParseDerivationPath(tt.input)
		if err != nil {
			if tt.err != nil {
				assert.Equal(t, tt.err, err)
			}
		}
		assert.Equal(t, tt.output, path)
	}
}

func TestCheckDerivationPath(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"m/44'/0'/0'/0/0", nil},
		{"m/44'/1'/0'/0/12", nil},
		{"m/44'/0'/0'/0", ErrInvalidDerivationPathLength},
		{"m/44'/0'/0'/0/0/0", ErrInvalidDerivationPathLength},
		{"m/44/0'/0'/0/0", ErrInvalidDerivationPathAccount},
		{"m/44'/0/0'/0/0", ErrInvalidDerivationPathAccount},
		{"m/44'/0'/0/0/0", ErrInvalidDerivationPathAccount},
	}
	for _, tt := range tests {
		path, err := ParseDerivationPath(tt.input)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, tt.err, checkDerivationPath(path))
	}
}

func TestDerivationPathString(t *testing.T) {
	tests := []string{
		"m/44'/0'/0'/0/0",
		"m/44'/1'/0'/0/128",
	}
	for _, tt := range tests {
		path, err := ParseDerivationPath(tt)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, tt, path.String())
	}
}
