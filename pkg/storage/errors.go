package storage

import "errors"

// Common errors returned by storage implementations.
var (
	// ErrAlreadyInTx is returned when Begin is called on a storage handle that is
	// already transactional. Transactions do not nest.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned when Commit or Rollback is called on a storage
	// handle that is not transactional.
	ErrNotInTx = errors.New("not in tx")
)
