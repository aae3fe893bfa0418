package esplora

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pocket-wallet/pocketd/pkg/explorer"
)

func (e *esplora) GetUnspents(
	ctx context.Context, addr string,
) ([]explorer.Utxo, error) {
	url := fmt.Sprintf("%s/address/%s/utxo", e.apiURL, addr)
	_, resp, err := e.doRequest(ctx, "GET", url, "", nil)
	if err != nil {
		return nil, err
	}

	var witnessOuts []witnessUtxo
	if err := json.Unmarshal([]byte(resp), &witnessOuts); err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %s", err)
	}

	unspents := make([]explorer.Utxo, 0, len(witnessOuts))
	for _, out := range witnessOuts {
		unspents = append(unspents, explorer.NewWitnessUtxo(
			out.Txid, out.Vout, out.Value,
			out.Status.Confirmed, out.Status.BlockHeight,
		))
	}

	return unspents, nil
}

type witnessUtxo struct {
	Txid   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Value  uint64 `json:"value"`
	Status struct {
		Confirmed   bool `json:"confirmed"`
		BlockHeight int  `json:"block_height"`
	} `json:"status"`
}
