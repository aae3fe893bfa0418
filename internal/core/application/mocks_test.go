package application

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/pocket-wallet/pocketd/pkg/explorer"
	"github.com/pocket-wallet/pocketd/pkg/securestore"
)

// **** Explorer ****

type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) GetUnspents(
	ctx context.Context, addr string,
) ([]explorer.Utxo, error) {
	args := m.Called(ctx, addr)

	var res []explorer.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]explorer.Utxo)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) BroadcastTransaction(
	ctx context.Context, txHex string,
) (string, error) {
	args := m.Called(ctx, txHex)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetBlockHeight(ctx context.Context) (int, error) {
	args := m.Called(ctx)

	var res int
	if a := args.Get(0); a != nil {
		res = a.(int)
	}
	return res, args.Error(1)
}

// **** SecureStorage ****

// inMemoryStore is an unencrypted in-memory rendition of the secure store,
// tracking writes so that tests can assert how often the seed is persisted.
type inMemoryStore struct {
	mtx      sync.Mutex
	data     map[string][]byte
	locked   bool
	putCalls int
	getErr   error
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: map[string][]byte{}}
}

func (s *inMemoryStore) CreateUnlock(password *[]byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.locked = false
	return nil
}

func (s *inMemoryStore) IsLocked() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.locked
}

func (s *inMemoryStore) Lock() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.locked = true
}

func (s *inMemoryStore) Close() error {
	s.Lock()
	return nil
}

func (s *inMemoryStore) Put(key, value []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.putCalls++
	s.data[string(key)] = value
	return nil
}

func (s *inMemoryStore) Get(key []byte) ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	value, ok := s.data[string(key)]
	if !ok {
		return nil, securestore.ErrDataNotFound
	}
	return value, nil
}

func (s *inMemoryStore) Remove(key []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.data, string(key))
	return nil
}
