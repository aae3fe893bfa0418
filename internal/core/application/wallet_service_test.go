package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pocket-wallet/pocketd/internal/core/domain"
	"github.com/pocket-wallet/pocketd/pkg/explorer"
)

const (
	testUtxoHash    = "4c9f2b3a1de08f4d06cf203dfc39f45be1b25b2b663b9eb12e26af9a0f501337"
	testRecipient   = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	testBroadcastID = "64b3c979187a7e6e03dd2e6c5814b1c0ea52550b0e37fdfad99646bba3a5b9f3"
)

// testUnspents is the canonical scenario: two confirmed utxos worth 120000
// satoshis in total plus an unconfirmed one that never counts.
func testUnspents() []explorer.Utxo {
	return []explorer.Utxo{
		explorer.NewWitnessUtxo(testUtxoHash, 0, 50000, true, 100),
		explorer.NewWitnessUtxo(testUtxoHash, 1, 70000, true, 100),
		explorer.NewWitnessUtxo(testUtxoHash, 2, 30000, false, 0),
	}
}

func newTestWalletService(
	t *testing.T, explorerSvc explorer.Service,
) WalletService {
	t.Helper()

	custodian := NewKeyCustodian(newInMemoryStore(), &chaincfg.MainNetParams)
	state := custodian.LoadOrCreate(context.Background())
	require.Equal(t, domain.KeyStatusPresent, state.Status)

	return NewWalletService(custodian, explorerSvc, &chaincfg.MainNetParams)
}

func TestUpdateBalance(t *testing.T) {
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(testUnspents(), nil)

	walletSvc := newTestWalletService(t, explorerSvc)
	assert.Nil(t, walletSvc.Balance())

	sub := walletSvc.SubscribeBalance()

	require.NoError(t, walletSvc.UpdateBalance(context.Background()))
	require.NotNil(t, walletSvc.Balance())
	assert.Equal(t, uint64(120000), *walletSvc.Balance())
	assert.Equal(t, uint64(120000), <-sub)

	// Refreshing against the same unspent set is idempotent.
	require.NoError(t, walletSvc.UpdateBalance(context.Background()))
	assert.Equal(t, uint64(120000), *walletSvc.Balance())
}

func TestUpdateBalanceRetriesOnNetworkFailure(t *testing.T) {
	retryDelay := balanceRetryDelay
	balanceRetryDelay = 10 * time.Millisecond
	defer func() { balanceRetryDelay = retryDelay }()

	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: connection refused", explorer.ErrRequestFailed)).
		Once()
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(testUnspents(), nil)

	walletSvc := newTestWalletService(t, explorerSvc)

	err := walletSvc.UpdateBalance(context.Background())
	require.Error(t, err)
	assert.Nil(t, walletSvc.Balance())

	// The single scheduled retry succeeds and publishes the balance.
	require.Eventually(t, func() bool {
		return walletSvc.Balance() != nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(120000), *walletSvc.Balance())
	explorerSvc.AssertNumberOfCalls(t, "GetUnspents", 2)
}

func TestUpdateBalanceNoRetryOnRejection(t *testing.T) {
	retryDelay := balanceRetryDelay
	balanceRetryDelay = 10 * time.Millisecond
	defer func() { balanceRetryDelay = retryDelay }()

	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: bad request", explorer.ErrRequestRejected))

	walletSvc := newTestWalletService(t, explorerSvc)

	err := walletSvc.UpdateBalance(context.Background())
	require.Error(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, walletSvc.Balance())
	explorerSvc.AssertNumberOfCalls(t, "GetUnspents", 1)
}

func TestCalculateFee(t *testing.T) {
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(testUnspents(), nil)

	walletSvc := newTestWalletService(t, explorerSvc)

	fee, err := walletSvc.CalculateFee(context.Background(), testRecipient, 5000)
	require.NoError(t, err)
	// One input and a change output at the flat rate.
	assert.InDelta(t, 446, float64(fee), 446*0.02)

	// A second estimate within the cache window reuses the fetched set.
	otherFee, err := walletSvc.CalculateFee(context.Background(), testRecipient, 5000)
	require.NoError(t, err)
	assert.InDelta(t, float64(fee), float64(otherFee), 446*0.02)
	explorerSvc.AssertNumberOfCalls(t, "GetUnspents", 1)
}

func TestCalculateFeeMonotonicity(t *testing.T) {
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(testUnspents(), nil)

	walletSvc := newTestWalletService(t, explorerSvc)

	// Spending more than the largest single utxo needs a second input and a
	// strictly larger transaction.
	smallFee, err := walletSvc.CalculateFee(context.Background(), testRecipient, 5000)
	require.NoError(t, err)
	bigFee, err := walletSvc.CalculateFee(context.Background(), testRecipient, 100000)
	require.NoError(t, err)
	assert.Greater(t, bigFee, smallFee)
}

func TestCalculateFeeEmptyUtxoSet(t *testing.T) {
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return([]explorer.Utxo{}, nil)

	walletSvc := newTestWalletService(t, explorerSvc)

	fee, err := walletSvc.CalculateFee(context.Background(), testRecipient, 5000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)
}

func TestCalculateFeeInvalidAddress(t *testing.T) {
	explorerSvc := &mockExplorer{}
	walletSvc := newTestWalletService(t, explorerSvc)

	_, err := walletSvc.CalculateFee(context.Background(), "invalidAddress", 5000)
	assert.Equal(t, domain.ErrInvalidAddress, err)
	explorerSvc.AssertNotCalled(t, "GetUnspents")
}

func TestSend(t *testing.T) {
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(testUnspents(), nil)
	explorerSvc.On("BroadcastTransaction", mock.Anything, mock.Anything).
		Return(testBroadcastID, nil)

	walletSvc := newTestWalletService(t, explorerSvc)

	txid, err := walletSvc.Send(context.Background(), testRecipient, 5000)
	require.NoError(t, err)
	assert.Equal(t, testBroadcastID, txid)

	// The balance is refreshed right after broadcasting.
	require.NotNil(t, walletSvc.Balance())
	assert.Equal(t, uint64(120000), *walletSvc.Balance())
}

func TestSendInsufficientFunds(t *testing.T) {
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return([]explorer.Utxo{}, nil)

	walletSvc := newTestWalletService(t, explorerSvc)

	_, err := walletSvc.Send(context.Background(), testRecipient, 5000)
	assert.Equal(t, domain.ErrInsufficientFunds, err)
	explorerSvc.AssertNotCalled(t, "BroadcastTransaction")
}

func TestSendUnconfirmedFundsDoNotCount(t *testing.T) {
	unspents := []explorer.Utxo{
		explorer.NewWitnessUtxo(testUtxoHash, 0, 50000, true, 100),
		explorer.NewWitnessUtxo(testUtxoHash, 2, 200000, false, 0),
	}
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(unspents, nil)

	walletSvc := newTestWalletService(t, explorerSvc)

	_, err := walletSvc.Send(context.Background(), testRecipient, 100000)
	assert.Equal(t, domain.ErrInsufficientFunds, err)
	explorerSvc.AssertNotCalled(t, "BroadcastTransaction")
}

func TestSendBroadcastFailureStillRefreshesBalance(t *testing.T) {
	broadcastErr := fmt.Errorf("%w: txn-mempool-conflict", explorer.ErrRequestRejected)
	explorerSvc := &mockExplorer{}
	explorerSvc.On("GetUnspents", mock.Anything, mock.Anything).
		Return(testUnspents(), nil)
	explorerSvc.On("BroadcastTransaction", mock.Anything, mock.Anything).
		Return("", broadcastErr)

	walletSvc := newTestWalletService(t, explorerSvc)

	_, err := walletSvc.Send(context.Background(), testRecipient, 5000)
	require.Error(t, err)
	assert.Equal(t, true, errors.Is(err, explorer.ErrRequestRejected))
	require.NotNil(t, walletSvc.Balance())
	assert.Equal(t, uint64(120000), *walletSvc.Balance())
}

func TestIsAddressValid(t *testing.T) {
	explorerSvc := &mockExplorer{}
	walletSvc := newTestWalletService(t, explorerSvc)

	address, err := walletSvc.SpendingAddress()
	require.NoError(t, err)

	tests := []struct {
		address string
		valid   bool
	}{
		{address, true},
		{testRecipient, true},
		{"", false},
		{"invalidAddress", false},
		// Valid address of another network.
		{"tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, walletSvc.IsAddressValid(tt.address))
	}
}
