package wallet

// NewMnemonicOpts is the struct given to the NewMnemonic method
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words generated from fresh
// random entropy
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	return generateMnemonic(opts.EntropySize)
}

// NewMnemonicFromEntropyOpts is the struct given to the NewMnemonicFromEntropy
// method
type NewMnemonicFromEntropyOpts struct {
	Entropy []byte
}

func (o NewMnemonicFromEntropyOpts) validate() error {
	if len(o.Entropy) != entropySizeInBytes {
		return ErrInvalidEntropy
	}
	return nil
}

// NewMnemonicFromEntropy deterministically encodes the given entropy to its
// mnemonic word list representation
func NewMnemonicFromEntropy(opts NewMnemonicFromEntropyOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return mnemonicFromEntropy(opts.Entropy)
}
