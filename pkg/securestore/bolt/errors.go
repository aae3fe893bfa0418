package boltsecurestore

import (
	"fmt"

	"github.com/pocket-wallet/pocketd/pkg/securestore"
)

var (
	// ErrStoreLocked specifies that the store must be unlocked to perform the
	// requested operation.
	ErrStoreLocked = fmt.Errorf("store is locked")

	// ErrPasswordRequired specifies that a password is required to create/unlock
	// the store.
	ErrPasswordRequired = fmt.Errorf("password must not be null")
	// ErrInvalidPassword is returned when trying to unlock the store with an
	// incorrect password.
	ErrInvalidPassword = fmt.Errorf("password is not valid")

	// ErrRootBucketNotFound specifies that there is no root bucket which
	// can/should happen only if the store has been corrupted or was initialized
	// incorrectly.
	ErrRootBucketNotFound = fmt.Errorf("root bucket not found")

	// ErrDataNotFound specifies that no data has been found for a given key.
	ErrDataNotFound = securestore.ErrDataNotFound
	// ErrMissingDataKey specifies that a data key is required to perform the
	// requested operation.
	ErrMissingDataKey = fmt.Errorf("missing data key")
	// ErrForbiddenDataKey is used when the data key uses the reserved
	// encryption key id as its value.
	ErrForbiddenDataKey = fmt.Errorf("data key is not allowed")
	// ErrMissingData specifies that the data value is required to perform a
	// write operation.
	ErrMissingData = fmt.Errorf("missing data to add")
)
