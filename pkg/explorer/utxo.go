package explorer

type status struct {
	Confirmed   bool
	BlockHeight int
}

type witnessUtxo struct {
	UHash   string
	UIndex  uint32
	UValue  uint64
	UStatus status
}

// NewWitnessUtxo returns an Utxo identified by the hash and index of its
// generating transaction. Confirmed utxos carry the height of the block that
// included them.
func NewWitnessUtxo(
	hash string, index uint32, value uint64, confirmed bool, blockHeight int,
) Utxo {
	return witnessUtxo{
		UHash:   hash,
		UIndex:  index,
		UValue:  value,
		UStatus: status{Confirmed: confirmed, BlockHeight: blockHeight},
	}
}

func (wu witnessUtxo) Hash() string {
	return wu.UHash
}

func (wu witnessUtxo) Index() uint32 {
	return wu.UIndex
}

func (wu witnessUtxo) Value() uint64 {
	return wu.UValue
}

func (wu witnessUtxo) IsConfirmed() bool {
	return wu.UStatus.Confirmed
}

func (wu witnessUtxo) BlockHeight() int {
	return wu.UStatus.BlockHeight
}
