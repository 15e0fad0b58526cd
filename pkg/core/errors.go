package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly      = errors.New("repository is in read-only mode")
	ErrNotFound      = errors.New("record not found")
	ErrStorage       = errors.New("storage failure")
	ErrInvalidRecord = errors.New("invalid record")
	ErrUnknownKind   = errors.New("unknown collection")
	ErrTxClosed      = errors.New("transaction closed")

	ErrNoTransactions = errors.New("repository does not support transactions")
)

// StorageError reports a failed backend operation.
// It matches both ErrStorage and the underlying cause with errors.Is.
type StorageError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *StorageError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// Storage wraps err as a StorageError. A nil err stays nil, and errors that
// already describe a storage failure or a read-only rejection are returned
// unchanged.
func Storage(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrReadOnly) {
		return err
	}
	return &StorageError{Op: op, Kind: kind, Err: err}
}
