package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pocket-wallet/pocketd/internal/core/domain"
	"github.com/pocket-wallet/pocketd/pkg/explorer"
	"github.com/pocket-wallet/pocketd/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

const (
	// utxoCacheMaxAge is how long a fetched unspent set may serve fee
	// estimates before a refetch. Balance refreshes and sends always bypass
	// the cache.
	utxoCacheMaxAge = time.Minute
)

// balanceRetryDelay is the fixed delay before the single automatic retry of
// a balance refresh that failed at the transport level.
var balanceRetryDelay = time.Second

// WalletService exposes the wallet engine: the observable confirmed balance
// and the fee/send operations over the one spending address.
type WalletService interface {
	// SpendingAddress returns the wallet's address once custody is ready.
	SpendingAddress() (string, error)
	// Balance returns the last published confirmed balance in satoshis,
	// nil until a refresh succeeded.
	Balance() *uint64
	// SubscribeBalance returns a channel notified on every published value.
	SubscribeBalance() <-chan uint64
	// UpdateBalance refreshes the confirmed balance from the explorer. A
	// transport failure schedules exactly one retry after a fixed delay;
	// nothing is published until a fetch succeeds.
	UpdateBalance(ctx context.Context) error
	// IsAddressValid reports whether the address parses for the wallet's
	// network. It never fails.
	IsAddressValid(address string) bool
	// CalculateFee returns the fee in satoshis of sending amount to the
	// given address, without broadcasting anything.
	CalculateFee(ctx context.Context, address string, amount uint64) (uint64, error)
	// Send pays amount to the given address and returns the id of the
	// broadcast transaction.
	Send(ctx context.Context, address string, amount uint64) (string, error)
}

type walletService struct {
	custodian   KeyCustodian
	explorerSvc explorer.Service
	cache       *utxoCache
	net         *chaincfg.Params

	balanceMtx  sync.RWMutex
	balance     *uint64
	balanceSubs []chan uint64
	retryTimer  *time.Timer
}

// NewWalletService returns a WalletService composing the key custodian, the
// explorer and the utxo cache into the public wallet operations.
func NewWalletService(
	custodian KeyCustodian,
	explorerSvc explorer.Service,
	net *chaincfg.Params,
) WalletService {
	return &walletService{
		custodian:   custodian,
		explorerSvc: explorerSvc,
		cache:       newUtxoCache(explorerSvc),
		net:         net,
	}
}

func (w *walletService) SpendingAddress() (string, error) {
	key, err := w.custodian.SpendingKey()
	if err != nil {
		return "", err
	}
	return key.Address, nil
}

func (w *walletService) Balance() *uint64 {
	w.balanceMtx.RLock()
	defer w.balanceMtx.RUnlock()
	return w.balance
}

func (w *walletService) SubscribeBalance() <-chan uint64 {
	w.balanceMtx.Lock()
	defer w.balanceMtx.Unlock()
	sub := make(chan uint64, 1)
	w.balanceSubs = append(w.balanceSubs, sub)
	return sub
}

func (w *walletService) UpdateBalance(ctx context.Context) error {
	// A fresh refresh supersedes any retry still scheduled by a previous
	// failed one.
	w.cancelScheduledRefresh()
	return w.refreshBalance(ctx, true)
}

func (w *walletService) IsAddressValid(address string) bool {
	if len(address) <= 0 {
		return false
	}
	decoded, err := btcutil.DecodeAddress(address, w.net)
	if err != nil {
		return false
	}
	return decoded.IsForNet(w.net)
}

func (w *walletService) CalculateFee(
	ctx context.Context, address string, amount uint64,
) (uint64, error) {
	if !w.IsAddressValid(address) {
		return 0, domain.ErrInvalidAddress
	}
	key, err := w.custodian.SpendingKey()
	if err != nil {
		return 0, err
	}

	unspents, err := w.cache.fetch(ctx, key.Address, utxoCacheMaxAge)
	if err != nil {
		return 0, err
	}

	selection := explorer.SelectUnspents(
		confirmedOnly(unspents), amount, wallet.EstimateFeeAmount,
	)
	// A transaction spending nothing pays nothing.
	if len(selection.Unspents) <= 0 {
		return 0, nil
	}

	txHex, _, err := w.craftTransaction(key, selection.Unspents, address, amount)
	if err != nil {
		return 0, err
	}

	// The fee rate applies to the hex serialization handed over for
	// broadcast.
	return uint64(len(txHex)) * wallet.FeeRatePerByte, nil
}

func (w *walletService) Send(
	ctx context.Context, address string, amount uint64,
) (string, error) {
	if !w.IsAddressValid(address) {
		return "", domain.ErrInvalidAddress
	}
	key, err := w.custodian.SpendingKey()
	if err != nil {
		return "", err
	}

	unspents, err := w.cache.fetch(ctx, key.Address, 0)
	if err != nil {
		return "", err
	}

	selection := explorer.SelectUnspents(
		confirmedOnly(unspents), amount, wallet.EstimateFeeAmount,
	)
	txHex, fee, err := w.craftTransaction(key, selection.Unspents, address, amount)
	if err != nil {
		return "", err
	}

	// Re-fetch the live balance and verify sufficiency before anything
	// reaches the network. Selection never errors on a shortfall, this is
	// the one place insufficiency surfaces.
	liveUnspents, err := w.cache.fetch(ctx, key.Address, 0)
	if err != nil {
		return "", err
	}
	liveBalance := sumConfirmedValues(liveUnspents)
	if amount+fee > liveBalance {
		return "", domain.ErrInsufficientFunds
	}

	txid, err := w.explorerSvc.BroadcastTransaction(ctx, txHex)

	// Whatever the outcome of the broadcast, refresh the balance to
	// reconcile the spent/unspent state.
	if refreshErr := w.UpdateBalance(ctx); refreshErr != nil {
		log.WithError(refreshErr).Warn("balance refresh after send failed")
	}

	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"txid":   txid,
		"amount": amount,
		"fee":    fee,
	}).Debug("transaction broadcast")
	return txid, nil
}

// craftTransaction builds and signs the transaction spending the selected
// unspents to pay the given address, with change returning to the wallet's
// own address.
func (w *walletService) craftTransaction(
	key *domain.SpendingKey,
	selected []explorer.Utxo,
	address string,
	amount uint64,
) (string, uint64, error) {
	hdWallet, err := w.custodian.HDWallet()
	if err != nil {
		return "", 0, err
	}

	return hdWallet.NewSendTransaction(wallet.NewSendTransactionOpts{
		Unspents:       selected,
		OutputAddress:  address,
		OutputAmount:   amount,
		ChangeAddress:  key.Address,
		DerivationPath: key.DerivationPath,
		Network:        w.net,
	})
}

// refreshBalance fetches the live unspent set and publishes the confirmed
// balance. When retryOnNetworkFailure is set, a transport failure schedules
// a single delayed retry; the retried refresh never reschedules.
func (w *walletService) refreshBalance(
	ctx context.Context, retryOnNetworkFailure bool,
) error {
	key, err := w.custodian.SpendingKey()
	if err != nil {
		return err
	}

	unspents, err := w.cache.fetch(ctx, key.Address, 0)
	if err != nil {
		if retryOnNetworkFailure && errors.Is(err, explorer.ErrRequestFailed) {
			log.WithError(err).Warn("balance refresh failed, retrying once")
			w.scheduleRefresh()
		} else {
			log.WithError(err).Error("balance refresh failed")
		}
		return err
	}

	w.publishBalance(sumConfirmedValues(unspents))
	return nil
}

func (w *walletService) scheduleRefresh() {
	w.balanceMtx.Lock()
	defer w.balanceMtx.Unlock()
	if w.retryTimer != nil {
		w.retryTimer.Stop()
	}
	w.retryTimer = time.AfterFunc(balanceRetryDelay, func() {
		//nolint:errcheck
		w.refreshBalance(context.Background(), false)
	})
}

func (w *walletService) cancelScheduledRefresh() {
	w.balanceMtx.Lock()
	defer w.balanceMtx.Unlock()
	if w.retryTimer != nil {
		w.retryTimer.Stop()
		w.retryTimer = nil
	}
}

func (w *walletService) publishBalance(value uint64) {
	w.balanceMtx.Lock()
	defer w.balanceMtx.Unlock()
	w.balance = &value
	for _, sub := range w.balanceSubs {
		select {
		case sub <- value:
		default:
		}
	}
}

func confirmedOnly(unspents []explorer.Utxo) []explorer.Utxo {
	confirmed := make([]explorer.Utxo, 0, len(unspents))
	for _, u := range unspents {
		if u.IsConfirmed() {
			confirmed = append(confirmed, u)
		}
	}
	return confirmed
}

func sumConfirmedValues(unspents []explorer.Utxo) uint64 {
	var total uint64
	for _, u := range unspents {
		if u.IsConfirmed() {
			total += u.Value()
		}
	}
	return total
}
