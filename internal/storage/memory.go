package storage

import (
	"strings"
	"sync"
)

// MemoryDB implements DB using an in-memory map. Used in tests and for
// ephemeral (non-persistent) runs.
type MemoryDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates a new in-memory database.
func NewMemory() *MemoryDB {
	return &MemoryDB{
		data: make(map[string][]byte),
	}
}

// memoryTxn stages writes against the base map. A nil staged value marks
// a deletion. Writes apply to the base map only on commit.
type memoryTxn struct {
	db       *MemoryDB
	writes   map[string][]byte
	readOnly bool
}

// Get retrieves a value by key within the transaction.
func (t *memoryTxn) Get(key []byte) ([]byte, error) {
	k := string(key)
	if v, staged := t.writes[k]; staged {
		if v == nil {
			return nil, ErrKeyNotFound
		}
		return v, nil
	}
	v, ok := t.db.data[k]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

// Put stages a key-value pair within the transaction.
func (t *memoryTxn) Put(key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	v := make([]byte, len(value))
	copy(v, value)
	t.writes[string(key)] = v
	return nil
}

// Delete stages a key removal within the transaction.
func (t *memoryTxn) Delete(key []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.writes[string(key)] = nil
	return nil
}

// Has checks if a key exists within the transaction.
func (t *memoryTxn) Has(key []byte) (bool, error) {
	k := string(key)
	if v, staged := t.writes[k]; staged {
		return v != nil, nil
	}
	_, ok := t.db.data[k]
	return ok, nil
}

// ForEach iterates over all keys with the given prefix, merging staged
// writes over the base map.
func (t *memoryTxn) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	p := string(prefix)
	for k, v := range t.db.data {
		if !strings.HasPrefix(k, p) {
			continue
		}
		if staged, ok := t.writes[k]; ok {
			if staged == nil {
				continue // Deleted in this transaction.
			}
			v = staged
		}
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	for k, v := range t.writes {
		if v == nil || !strings.HasPrefix(k, p) {
			continue
		}
		if _, inBase := t.db.data[k]; inBase {
			continue // Already visited above.
		}
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// Update runs fn with staged writes, committing them only if fn succeeds.
func (m *MemoryDB) Update(fn func(Txn) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn := &memoryTxn{db: m, writes: make(map[string][]byte)}
	if err := fn(txn); err != nil {
		return err
	}
	for k, v := range txn.writes {
		if v == nil {
			delete(m.data, k)
		} else {
			m.data[k] = v
		}
	}
	return nil
}

// View runs fn against a read-only snapshot.
func (m *MemoryDB) View(fn func(Txn) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memoryTxn{db: m, readOnly: true})
}

// Get retrieves a value by key.
func (m *MemoryDB) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

// Put stores a key-value pair.
func (m *MemoryDB) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

// Delete removes a key.
func (m *MemoryDB) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

// Has checks if a key exists.
func (m *MemoryDB) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

// ForEach iterates over all keys with the given prefix.
func (m *MemoryDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return m.View(func(txn Txn) error {
		return txn.ForEach(prefix, fn)
	})
}

// Close closes the database.
func (m *MemoryDB) Close() error {
	return nil
}
