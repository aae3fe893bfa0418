package application

import (
	"context"
	"sync"
	"time"

	"github.com/pocket-wallet/pocketd/pkg/explorer"
)

// utxoCache is a time-bounded, single-slot cache of the last fetched unspent
// set. The wallet tracks one address, so one slot suffices; every successful
// fetch replaces the slot wholesale, entries are never merged.
type utxoCache struct {
	explorerSvc explorer.Service

	mtx       sync.Mutex
	address   string
	unspents  []explorer.Utxo
	fetchedAt time.Time
}

func newUtxoCache(explorerSvc explorer.Service) *utxoCache {
	return &utxoCache{explorerSvc: explorerSvc}
}

// fetch returns the cached unspents for the address when the entry is
// younger than maxAge, hitting the explorer otherwise. A maxAge of zero
// forces a refetch unconditionally. Explorer errors propagate unchanged and
// leave the cached entry untouched.
func (c *utxoCache) fetch(
	ctx context.Context, address string, maxAge time.Duration,
) ([]explorer.Utxo, error) {
	c.mtx.Lock()
	if maxAge > 0 && c.address == address && time.Since(c.fetchedAt) < maxAge {
		cached := c.unspents
		c.mtx.Unlock()
		return cached, nil
	}
	c.mtx.Unlock()

	unspents, err := c.explorerSvc.GetUnspents(ctx, address)
	if err != nil {
		return nil, err
	}

	c.mtx.Lock()
	c.address = address
	c.unspents = unspents
	c.fetchedAt = time.Now()
	c.mtx.Unlock()

	return unspents, nil
}
