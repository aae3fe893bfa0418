package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pocket-wallet/pocketd/internal/core/domain"
	"github.com/pocket-wallet/pocketd/pkg/securestore"
	"github.com/pocket-wallet/pocketd/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

const (
	// seedEntropySize is the entropy size in bits of a freshly generated
	// seed phrase, yielding 12 words.
	seedEntropySize = 128
	// spendingKeyAccount and spendingKeyIndex select the wallet's one
	// address within the BIP44 tree: external chain of the first account.
	spendingKeyAccount = 0
	spendingKeyIndex   = 0
)

// seedDataKey is the secure store key under which the seed phrase lives.
var seedDataKey = []byte("mnemonic")

// KeyCustodian owns the wallet's spending key: it loads the persisted seed
// phrase or creates one, derives the key and publishes the outcome as a
// state machine going from Unknown to either Present or Error.
type KeyCustodian interface {
	// LoadOrCreate runs the load-or-create flow once per process and
	// returns the resulting state. Subsequent calls return the state
	// reached by the first one.
	LoadOrCreate(ctx context.Context) domain.KeyState
	// State returns the current custody state.
	State() domain.KeyState
	// SpendingKey returns the derived key, or ErrKeyNotAvailable while the
	// state is not Present.
	SpendingKey() (*domain.SpendingKey, error)
	// HDWallet returns the wallet holding the signing material, or
	// ErrKeyNotAvailable while the state is not Present.
	HDWallet() (*wallet.Wallet, error)
	// Subscribe returns a channel notified on every state transition.
	Subscribe() <-chan domain.KeyState
}

type keyCustodian struct {
	store securestore.SecureStorage
	net   *chaincfg.Params

	loadOnce sync.Once

	mtx      sync.RWMutex
	state    domain.KeyState
	hdWallet *wallet.Wallet
	subs     []chan domain.KeyState
}

// NewKeyCustodian returns a KeyCustodian persisting the seed phrase in the
// given secure store and deriving the spending key for the given network.
func NewKeyCustodian(
	store securestore.SecureStorage, net *chaincfg.Params,
) KeyCustodian {
	return &keyCustodian{
		store: store,
		net:   net,
		state: domain.KeyState{Status: domain.KeyStatusUnknown},
	}
}

func (k *keyCustodian) LoadOrCreate(ctx context.Context) domain.KeyState {
	// The seed, once loaded or created, is never regenerated within a
	// session: at most one Present value is ever published.
	k.loadOnce.Do(k.load)
	return k.State()
}

func (k *keyCustodian) State() domain.KeyState {
	k.mtx.RLock()
	defer k.mtx.RUnlock()
	return k.state
}

func (k *keyCustodian) SpendingKey() (*domain.SpendingKey, error) {
	state := k.State()
	if state.Status != domain.KeyStatusPresent {
		return nil, domain.ErrKeyNotAvailable
	}
	return state.Key, nil
}

func (k *keyCustodian) HDWallet() (*wallet.Wallet, error) {
	k.mtx.RLock()
	defer k.mtx.RUnlock()
	if k.state.Status != domain.KeyStatusPresent {
		return nil, domain.ErrKeyNotAvailable
	}
	return k.hdWallet, nil
}

func (k *keyCustodian) Subscribe() <-chan domain.KeyState {
	k.mtx.Lock()
	defer k.mtx.Unlock()
	sub := make(chan domain.KeyState, 1)
	k.subs = append(k.subs, sub)
	return sub
}

func (k *keyCustodian) load() {
	mnemonic, err := k.loadOrCreateMnemonic()
	if err != nil {
		k.publishError(err)
		return
	}

	hdWallet, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		SigningMnemonic: mnemonic,
	})
	if err != nil {
		k.publishError(fmt.Errorf("%w: %v", domain.ErrStoredSeedCorrupted, err))
		return
	}

	derivationPath := spendingKeyDerivationPath(k.net)
	_, pubkey, err := hdWallet.DeriveSigningKeyPair(wallet.DeriveSigningKeyPairOpts{
		DerivationPath: derivationPath,
	})
	if err != nil {
		k.publishError(err)
		return
	}
	addr, err := hdWallet.DeriveAddress(wallet.DeriveAddressOpts{
		DerivationPath: derivationPath,
		Network:        k.net,
	})
	if err != nil {
		k.publishError(err)
		return
	}

	k.publishPresent(hdWallet, &domain.SpendingKey{
		PublicKey:      pubkey,
		Address:        addr,
		DerivationPath: derivationPath,
	})
}

// loadOrCreateMnemonic returns the stored seed phrase, generating and
// persisting a fresh one if the store reports no data. The create path is
// the only one ever writing to the store.
func (k *keyCustodian) loadOrCreateMnemonic() ([]string, error) {
	value, err := k.store.Get(seedDataKey)
	if err == nil {
		mnemonic := strings.Fields(string(value))
		if len(mnemonic) <= 0 {
			return nil, domain.ErrStoredSeedCorrupted
		}
		return mnemonic, nil
	}
	if err != securestore.ErrDataNotFound {
		return nil, err
	}

	log.Debug("no seed phrase found, generating a new one")
	mnemonic, err := wallet.NewMnemonic(wallet.NewMnemonicOpts{
		EntropySize: seedEntropySize,
	})
	if err != nil {
		return nil, err
	}
	if err := k.store.Put(
		seedDataKey, []byte(strings.Join(mnemonic, " ")),
	); err != nil {
		return nil, err
	}
	return mnemonic, nil
}

func (k *keyCustodian) publishPresent(hdWallet *wallet.Wallet, key *domain.SpendingKey) {
	k.mtx.Lock()
	defer k.mtx.Unlock()
	k.hdWallet = hdWallet
	k.state = domain.KeyState{Status: domain.KeyStatusPresent, Key: key}
	k.notifyLocked()
	log.WithField("address", key.Address).Debug("spending key ready")
}

func (k *keyCustodian) publishError(err error) {
	k.mtx.Lock()
	defer k.mtx.Unlock()
	k.state = domain.KeyState{Status: domain.KeyStatusError, Err: err}
	k.notifyLocked()
	log.WithError(err).Error("key custody failed")
}

func (k *keyCustodian) notifyLocked() {
	for _, sub := range k.subs {
		select {
		case sub <- k.state:
		default:
		}
	}
}

// spendingKeyDerivationPath returns the absolute BIP44 path of the wallet's
// one spending key for the given network.
func spendingKeyDerivationPath(net *chaincfg.Params) string {
	return fmt.Sprintf(
		"m/44'/%d'/%d'/0/%d",
		net.HDCoinType, spendingKeyAccount, spendingKeyIndex,
	)
}
