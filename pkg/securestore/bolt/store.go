package boltsecurestore

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btcwallet/snacl"
	"github.com/pocket-wallet/pocketd/pkg/securestore"
	bolt "go.etcd.io/bbolt"
)

const (
	dbTimeout = 5 * time.Second
)

var (
	// rootBucketName is the name of the bucket holding all key/value pairs.
	rootBucketName = []byte("vault")

	// encryptionKeyID is the name of the database key that stores the
	// encryption key, encrypted with a salted + hashed password. The
	// format is 32 bytes of salt, and the rest is encrypted key.
	encryptionKeyID = []byte("enckey")
)

type boltSecureStorage struct {
	db *bolt.DB

	encKeyMtx sync.RWMutex
	encKey    *snacl.SecretKey
}

// NewSecureStorage creates a bolt instance of the SecureStorage interface.
// The store starts locked: CreateUnlock must be called before any read or
// write operation.
func NewSecureStorage(datadir, filename string) (securestore.SecureStorage, error) {
	if _, err := os.Stat(datadir); os.IsNotExist(err) {
		if err := os.MkdirAll(datadir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(
		filepath.Join(datadir, filename), 0600,
		&bolt.Options{Timeout: dbTimeout},
	)
	if err != nil {
		return nil, err
	}

	// If the store's bucket doesn't exist, create it.
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucketName)
		return err
	}); err != nil {
		return nil, err
	}

	return &boltSecureStorage{db: db, encKey: nil}, nil
}

// IsLocked returns whether the store is locked by checking if the encryption
// key is stored in-memory.
func (s *boltSecureStorage) IsLocked() bool {
	return s.encKey == nil
}

// Lock eventually locks the store by flushing the in-memory encryption key.
func (s *boltSecureStorage) Lock() {
	if !s.IsLocked() {
		s.encKey.Zero()
		s.encKey = nil
	}
}

// Close flushes the encryption key and closes the connection to the DB.
func (s *boltSecureStorage) Close() error {
	s.Lock()
	return s.db.Close()
}

// CreateUnlock sets an encryption key if one is not already set, otherwise it
// checks if the password is correct for the stored encryption key.
func (s *boltSecureStorage) CreateUnlock(password *[]byte) error {
	// If the store is already unlocked there's nothing to do here.
	if !s.IsLocked() {
		return nil
	}

	if password == nil {
		return ErrPasswordRequired
	}

	s.encKeyMtx.Lock()
	defer s.encKeyMtx.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucketName)
		if bucket == nil {
			return ErrRootBucketNotFound
		}

		dbKey := bucket.Get(encryptionKeyID)
		if len(dbKey) > 0 {
			// A key is already stored, so try to unlock with the password.
			encKey := &snacl.SecretKey{}
			if err := encKey.Unmarshal(dbKey); err != nil {
				return err
			}

			if err := encKey.DeriveKey(password); err != nil {
				return ErrInvalidPassword
			}

			s.encKey = encKey
			return nil
		}

		// The encryption key is not yet stored, so create a new one.
		encKey, err := snacl.NewSecretKey(
			password, snacl.DefaultN, snacl.DefaultR, snacl.DefaultP,
		)
		if err != nil {
			return err
		}

		if err := bucket.Put(encryptionKeyID, encKey.Marshal()); err != nil {
			return err
		}

		s.encKey = encKey
		return nil
	})
}

// Put encrypts the value with the store's encryption key and adds the
// key/value pair to the store, replacing any previous value for the key.
func (s *boltSecureStorage) Put(key, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(value) <= 0 {
		return ErrMissingData
	}

	s.encKeyMtx.RLock()
	defer s.encKeyMtx.RUnlock()

	if s.IsLocked() {
		return ErrStoreLocked
	}

	encryptedValue, err := s.encKey.Encrypt(value)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucketName)
		if bucket == nil {
			return ErrRootBucketNotFound
		}
		return bucket.Put(key, encryptedValue)
	})
}

// Get retrieves and decrypts the value stored for the given key. It returns
// ErrDataNotFound if no data exists for the key.
func (s *boltSecureStorage) Get(key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	s.encKeyMtx.RLock()
	defer s.encKeyMtx.RUnlock()

	if s.IsLocked() {
		return nil, ErrStoreLocked
	}

	var value []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucketName)
		if bucket == nil {
			return ErrRootBucketNotFound
		}

		encryptedValue := bucket.Get(key)
		if encryptedValue == nil {
			return ErrDataNotFound
		}

		decryptedValue, err := s.encKey.Decrypt(encryptedValue)
		if err != nil {
			return err
		}

		value = decryptedValue
		return nil
	}); err != nil {
		return nil, err
	}

	return value, nil
}

// Remove deletes the key/value pair from the store, if it exists.
func (s *boltSecureStorage) Remove(key []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.encKeyMtx.RLock()
	defer s.encKeyMtx.RUnlock()

	if s.IsLocked() {
		return ErrStoreLocked
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucketName)
		if bucket == nil {
			return ErrRootBucketNotFound
		}
		return bucket.Delete(key)
	})
}

func checkKey(key []byte) error {
	if len(key) <= 0 {
		return ErrMissingDataKey
	}
	if bytes.Equal(key, encryptionKeyID) {
		return ErrForbiddenDataKey
	}
	return nil
}
