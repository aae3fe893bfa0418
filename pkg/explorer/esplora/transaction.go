package esplora

import (
	"context"
	"fmt"
	"strconv"
)

func (e *esplora) BroadcastTransaction(
	ctx context.Context, txHex string,
) (string, error) {
	url := fmt.Sprintf("%s/tx", e.apiURL)
	headers := map[string]string{
		"Content-Type": "text/plain",
	}

	_, resp, err := e.doRequest(ctx, "POST", url, txHex, headers)
	if err != nil {
		return "", err
	}

	return resp, nil
}

func (e *esplora) GetBlockHeight(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	_, resp, err := e.doRequest(ctx, "GET", url, "", nil)
	if err != nil {
		return -1, err
	}

	blockHeight, err := strconv.Atoi(resp)
	if err != nil {
		return -1, err
	}

	return blockHeight, nil
}
