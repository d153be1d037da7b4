// Package storage provides database abstractions.
package storage

import "errors"

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// ErrReadOnly is returned when a write is attempted inside View.
var ErrReadOnly = errors.New("read-only transaction")

// Txn is the set of operations available inside a transaction.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
}

// DB is the interface for key-value storage. Standalone Get/Put/Delete/Has/
// ForEach calls each run in their own transaction; Update and View group
// operations into a single atomic unit.
type DB interface {
	Txn

	// Update runs fn inside a read-write transaction. If fn returns an
	// error, every write made inside it is discarded; otherwise all
	// writes commit together.
	Update(fn func(Txn) error) error

	// View runs fn inside a read-only transaction, observing a
	// consistent snapshot. Writes inside fn fail with ErrReadOnly.
	View(fn func(Txn) error) error

	Close() error
}
