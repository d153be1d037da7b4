// Package ledger tracks ticket ownership.
//
// Every ticket is a token with a quantity-one balance: at any moment exactly
// one address holds each minted ticket. Balances are stored per (ticket,
// holder) pair so that holder enumeration for a ticket is a prefix scan.
package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/venuemint/venuemint/internal/storage"
	"github.com/venuemint/venuemint/pkg/types"
)

var prefixBalance = []byte("b/") // b/<tokenID(8 BE)><holder(20)> -> qty(8 BE)

// ErrLengthMismatch is returned when paired slices have different lengths.
var ErrLengthMismatch = errors.New("ids and quantities length mismatch")

// ErrInsufficientBalance is returned when a transfer exceeds the sender's
// balance for a ticket.
var ErrInsufficientBalance = errors.New("insufficient ticket balance")

// ErrNoHolder is returned by OwnerOf for a ticket nobody holds.
var ErrNoHolder = errors.New("ticket has no holder")

// Ledger persists ticket balances.
type Ledger struct {
	db storage.DB
}

// New creates a ledger over the given database.
func New(db storage.DB) *Ledger {
	return &Ledger{db: db}
}

// MintBatch credits quantities[i] of ids[i] to owner, one pair at a time.
// It runs inside the caller's transaction so that minting commits or rolls
// back together with the event registration that triggered it.
func (l *Ledger) MintBatch(txn storage.Txn, owner types.Address, ids []types.TokenID, quantities []uint64) error {
	if len(ids) != len(quantities) {
		return ErrLengthMismatch
	}
	for i, id := range ids {
		if err := l.credit(txn, owner, id, quantities[i]); err != nil {
			return err
		}
	}
	return nil
}

// BalanceOf returns owner's balance for a single ticket.
func (l *Ledger) BalanceOf(owner types.Address, id types.TokenID) (uint64, error) {
	var bal uint64
	err := l.db.View(func(txn storage.Txn) error {
		b, err := l.balance(txn, owner, id)
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

// BalanceOfBatch returns balances for positional (owners[i], ids[i]) pairs,
// all read from one snapshot.
func (l *Ledger) BalanceOfBatch(owners []types.Address, ids []types.TokenID) ([]uint64, error) {
	if len(owners) != len(ids) {
		return nil, ErrLengthMismatch
	}
	balances := make([]uint64, len(owners))
	err := l.db.View(func(txn storage.Txn) error {
		for i := range owners {
			b, err := l.balance(txn, owners[i], ids[i])
			if err != nil {
				return err
			}
			balances[i] = b
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// Transfer moves one unit of id from from to to within the caller's
// transaction. Returns ErrInsufficientBalance when from holds nothing.
func (l *Ledger) Transfer(txn storage.Txn, from, to types.Address, id types.TokenID) error {
	bal, err := l.balance(txn, from, id)
	if err != nil {
		return err
	}
	if bal == 0 {
		return fmt.Errorf("ticket %s from %s: %w", id, from, ErrInsufficientBalance)
	}

	if err := l.setBalance(txn, from, id, bal-1); err != nil {
		return err
	}
	return l.credit(txn, to, id, 1)
}

// OwnerOf returns the holder of a ticket. Quantity-one semantics make the
// holder unique; if the ticket was never minted (or somehow has no holder),
// ErrNoHolder is returned.
func (l *Ledger) OwnerOf(id types.TokenID) (types.Address, error) {
	var (
		owner types.Address
		found bool
	)
	err := l.db.View(func(txn storage.Txn) error {
		return l.forEachHolder(txn, id, func(holder types.Address, qty uint64) error {
			owner = holder
			found = true
			return errStopIteration
		})
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return types.Address{}, err
	}
	if !found {
		return types.Address{}, fmt.Errorf("ticket %s: %w", id, ErrNoHolder)
	}
	return owner, nil
}

// ForEachHolder iterates over all holders of a ticket with non-zero balance.
func (l *Ledger) ForEachHolder(id types.TokenID, fn func(holder types.Address, qty uint64) error) error {
	return l.db.View(func(txn storage.Txn) error {
		return l.forEachHolder(txn, id, fn)
	})
}

var errStopIteration = errors.New("stop iteration")

func (l *Ledger) forEachHolder(txn storage.Txn, id types.TokenID, fn func(types.Address, uint64) error) error {
	prefix := make([]byte, len(prefixBalance)+8)
	copy(prefix, prefixBalance)
	binary.BigEndian.PutUint64(prefix[len(prefixBalance):], uint64(id))

	return txn.ForEach(prefix, func(key, value []byte) error {
		if len(key) != len(prefix)+types.AddressSize || len(value) != 8 {
			return nil // Malformed entry, skip.
		}
		qty := binary.BigEndian.Uint64(value)
		if qty == 0 {
			return nil
		}
		var holder types.Address
		copy(holder[:], key[len(prefix):])
		return fn(holder, qty)
	})
}

func (l *Ledger) balance(txn storage.Txn, owner types.Address, id types.TokenID) (uint64, error) {
	data, err := txn.Get(balanceKey(owner, id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance get: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("balance entry for %s/%s has %d bytes", owner, id, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (l *Ledger) credit(txn storage.Txn, owner types.Address, id types.TokenID, qty uint64) error {
	if qty == 0 {
		return nil
	}
	bal, err := l.balance(txn, owner, id)
	if err != nil {
		return err
	}
	return l.setBalance(txn, owner, id, bal+qty)
}

// setBalance writes a balance, deleting the key on zero so holder scans
// only see live entries.
func (l *Ledger) setBalance(txn storage.Txn, owner types.Address, id types.TokenID, qty uint64) error {
	key := balanceKey(owner, id)
	if qty == 0 {
		return txn.Delete(key)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], qty)
	return txn.Put(key, buf[:])
}

func balanceKey(owner types.Address, id types.TokenID) []byte {
	key := make([]byte, len(prefixBalance)+8+types.AddressSize)
	copy(key, prefixBalance)
	binary.BigEndian.PutUint64(key[len(prefixBalance):], uint64(id))
	copy(key[len(prefixBalance)+8:], owner[:])
	return key
}
