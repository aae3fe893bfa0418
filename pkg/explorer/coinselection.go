package explorer

import (
	"sort"
)

// maxSelectionRounds bounds the fee/selection feedback loop. The number of
// selected inputs never decreases from one round to the next and is capped by
// the size of the available set, so the loop needs at most one round per
// distinct input count plus the final one. 64 rounds cover any UTXO set a
// single-address wallet can realistically accumulate.
const maxSelectionRounds = 64

// FeeEstimator maps the shape of a transaction, its number of inputs and
// outputs, to the fee it would pay.
type FeeEstimator func(numInputs, numOutputs int) uint64

// CandidateSelection is the outcome of a coin selection: the chosen unspents
// and their summed value. It is produced fresh per fee estimate or send
// attempt and never persisted.
type CandidateSelection struct {
	Unspents    []Utxo
	TotalAmount uint64
}

// SelectUnspents performs a greedy largest-first coin selection over the
// given unspents to cover targetAmount plus the network fee. The fee depends
// on the number of selected inputs, which in turn depends on the fee, so the
// fixed point is approached iteratively: each round estimates the fee for the
// current selection's shape and re-selects against the grown target.
//
// The returned selection may not cover the target. Sufficiency is the
// caller's check, made by comparing the final totals against the live
// balance. Ties in value keep the original input order.
func SelectUnspents(
	unspents []Utxo,
	targetAmount uint64,
	estimateFee FeeEstimator,
) *CandidateSelection {
	sorted := make([]Utxo, len(unspents))
	copy(sorted, unspents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value() > sorted[j].Value()
	})

	selected := make([]Utxo, 0, len(sorted))
	for round := 0; round < maxSelectionRounds; round++ {
		total := sumValues(selected)

		// A selection already exceeding the target plus its own fee needs a
		// change output, which itself grows the fee.
		numOutputs := 1
		if total > targetAmount+estimateFee(len(selected), numOutputs) {
			numOutputs = 2
		}
		fee := estimateFee(len(selected), numOutputs)
		needed := targetAmount + fee

		if total >= needed && len(selected) > 0 {
			break
		}

		reselected := accumulateUntil(sorted, needed)
		if len(reselected) == len(selected) && sumValues(reselected) < needed {
			// The whole set is exhausted and still short. Further rounds
			// cannot change the outcome.
			selected = reselected
			break
		}
		selected = reselected
	}

	return &CandidateSelection{
		Unspents:    selected,
		TotalAmount: sumValues(selected),
	}
}

func accumulateUntil(sorted []Utxo, needed uint64) []Utxo {
	selected := make([]Utxo, 0, len(sorted))
	total := uint64(0)
	for _, u := range sorted {
		if total >= needed && len(selected) > 0 {
			break
		}
		selected = append(selected, u)
		total += u.Value()
	}
	return selected
}

func sumValues(unspents []Utxo) uint64 {
	var total uint64
	for _, u := range unspents {
		total += u.Value()
	}
	return total
}
