package securestore

import "errors"

// ErrDataNotFound is returned by any implementation when no data exists for
// a given key. Callers rely on it to tell an absent secret apart from a
// corrupt or unreadable one.
var ErrDataNotFound = errors.New("data not found")

// SecureStorage interface defines the methods for a key/value DB that secures
// its content by encrypting the values of the pairs.
type SecureStorage interface {
	// Lock locks the DB once unlocked.
	Lock()
	// Close closes the connection to the DB.
	Close() (err error)
	// IsLocked returns whether the DB is (un)locked.
	IsLocked() (locked bool)
	// CreateUnlock creates or unlocks the DB with a password.
	CreateUnlock(password *[]byte) (err error)
	// Put adds the key/value entry to the store.
	Put(key, value []byte) (err error)
	// Get retrieves the value for a key, ErrDataNotFound if absent.
	Get(key []byte) (value []byte, err error)
	// Remove removes a key/value pair from the store.
	Remove(key []byte) (err error)
}
