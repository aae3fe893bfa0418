package wallet

const (
	// Byte sizes of the composing parts of a P2WPKH transaction: version,
	// marker/flag, the in/out counters and locktime for the header; outpoint,
	// empty script sig, sequence and a witness holding a DER-encoded ECDSA
	// signature plus a compressed pubkey for every input; 8-byte amount,
	// length prefix and 22-byte witness program script for every output.
	txHeaderSize = 12
	txInputSize  = 149
	txOutputSize = 32

	// FeeRatePerByte is the flat fee rate applied to the length of the
	// hex-encoded transaction handed over for broadcast, that is two
	// characters per raw byte. Network fee-rate feeds are out of scope.
	FeeRatePerByte = 1
)

// EstimateTxSize makes an estimation of the size in bytes of a transaction
// composed of P2WPKH inputs and outputs only. A transaction with no inputs
// spends nothing and has zero size by convention.
func EstimateTxSize(numInputs, numOutputs int) int {
	if numInputs == 0 {
		return 0
	}
	return txHeaderSize + numInputs*txInputSize + numOutputs*txOutputSize
}

// EstimateFeeAmount returns the fee in satoshis for a transaction of the
// given shape. The rate applies to the hex serialization, so the estimated
// byte size counts twice. This mirrors how the fee of a crafted transaction
// is measured on its hex encoding before broadcast.
func EstimateFeeAmount(numInputs, numOutputs int) uint64 {
	return uint64(EstimateTxSize(numInputs, numOutputs)) * 2 * FeeRatePerByte
}
