// Package funds tracks per-address currency balances.
//
// The purchase engine moves payment through these accounts: buyers are
// debited, vendors credited and excess refunded, all inside the engine's
// storage transaction.
package funds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/venuemint/venuemint/internal/storage"
	"github.com/venuemint/venuemint/pkg/types"
)

var prefixAccount = []byte("f/") // f/<addr(20)> -> balance(8 BE)

// ErrInsufficientFunds is returned when a withdrawal exceeds the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Store persists account balances.
type Store struct {
	db storage.DB
}

// New creates a funds store over the given database.
func New(db storage.DB) *Store {
	return &Store{db: db}
}

// Deposit credits amount to addr in its own transaction.
func (s *Store) Deposit(addr types.Address, amount uint64) error {
	return s.db.Update(func(txn storage.Txn) error {
		return s.DepositTxn(txn, addr, amount)
	})
}

// DepositTxn credits amount to addr inside the caller's transaction.
func (s *Store) DepositTxn(txn storage.Txn, addr types.Address, amount uint64) error {
	bal, err := s.BalanceTxn(txn, addr)
	if err != nil {
		return err
	}
	if bal > math.MaxUint64-amount {
		return fmt.Errorf("deposit overflows balance of %s", addr)
	}
	return s.setBalance(txn, addr, bal+amount)
}

// WithdrawTxn debits amount from addr inside the caller's transaction.
// Returns ErrInsufficientFunds when the balance is short.
func (s *Store) WithdrawTxn(txn storage.Txn, addr types.Address, amount uint64) error {
	bal, err := s.BalanceTxn(txn, addr)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("%s has %d, need %d: %w", addr, bal, amount, ErrInsufficientFunds)
	}
	return s.setBalance(txn, addr, bal-amount)
}

// Balance returns addr's balance. Unknown addresses read as zero.
func (s *Store) Balance(addr types.Address) (uint64, error) {
	var bal uint64
	err := s.db.View(func(txn storage.Txn) error {
		b, err := s.BalanceTxn(txn, addr)
		if err != nil {
			return err
		}
		bal = b
		return nil
	})
	if err != nil {
		return 0, err
	}
	return bal, nil
}

// BalanceTxn is Balance inside the caller's transaction.
func (s *Store) BalanceTxn(txn storage.Txn, addr types.Address) (uint64, error) {
	data, err := txn.Get(accountKey(addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance get: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("balance entry for %s has %d bytes", addr, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (s *Store) setBalance(txn storage.Txn, addr types.Address, bal uint64) error {
	if bal == 0 {
		return txn.Delete(accountKey(addr))
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], bal)
	return txn.Put(accountKey(addr), buf[:])
}

func accountKey(addr types.Address) []byte {
	key := make([]byte, len(prefixAccount)+types.AddressSize)
	copy(key, prefixAccount)
	copy(key[len(prefixAccount):], addr[:])
	return key
}
