// Package registry manages event records and ticket ID allocation.
//
// Each event reserves a contiguous range of ticket IDs from a single
// monotone allocator, so ranges never overlap and IDs are never reused.
package registry

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/venuemint/venuemint/internal/storage"
	"github.com/venuemint/venuemint/pkg/types"
)

var (
	prefixEvent = []byte("e/")        // e/<name> -> Event JSON
	keyNextID   = []byte("n/next_id") // -> uint64 BE
)

// firstTicketID is the ID handed out to the very first ticket. Starting at 1
// keeps 0 free as the "no such event" sentinel in GetEventIDs.
const firstTicketID types.TokenID = 1

var (
	// ErrInvalidName is returned when an event name is empty.
	ErrInvalidName = errors.New("event name must not be empty")

	// ErrInvalidCount is returned when an event is created with zero tickets.
	ErrInvalidCount = errors.New("ticket count must be positive")

	// ErrPriceCount is returned when the price list length does not match
	// the ticket count.
	ErrPriceCount = errors.New("price count does not match ticket count")

	// ErrDuplicateEvent is returned when the event name is already registered.
	ErrDuplicateEvent = errors.New("event name already registered")

	// ErrUnknownEvent is returned when no event is registered under a name.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrUnknownToken is returned when a ticket ID falls outside every
	// event's range.
	ErrUnknownToken = errors.New("unknown ticket id")
)

// Event is a registered event and its reserved ticket range.
type Event struct {
	Name      string        `json:"name"`
	Vendor    types.Address `json:"vendor"`
	FirstID   types.TokenID `json:"first_id"`
	LastID    types.TokenID `json:"last_id"`
	Tier      uint8         `json:"tier"`
	Prices    []uint64      `json:"prices"`
	CreatedAt time.Time     `json:"created_at"`
}

// Count returns the number of tickets the event reserved.
func (e *Event) Count() int {
	return int(e.LastID-e.FirstID) + 1
}

// Contains reports whether id falls inside the event's range.
func (e *Event) Contains(id types.TokenID) bool {
	return id >= e.FirstID && id <= e.LastID
}

// PriceOf returns the price of a ticket in this event's range.
func (e *Event) PriceOf(id types.TokenID) (uint64, bool) {
	if !e.Contains(id) {
		return 0, false
	}
	return e.Prices[id-e.FirstID], true
}

// IDs returns the event's ticket IDs in ascending order.
func (e *Event) IDs() []types.TokenID {
	ids := make([]types.TokenID, 0, e.Count())
	for id := e.FirstID; id <= e.LastID; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Registry persists event records and the ID allocator state.
type Registry struct {
	db storage.DB
}

// New creates a registry over the given database.
func New(db storage.DB) *Registry {
	return &Registry{db: db}
}

// CreateEvent validates and registers an event inside the caller's
// transaction, reserving [next_id, next_id+count-1]. The caller is
// responsible for minting the reserved tickets in the same transaction.
func (r *Registry) CreateEvent(txn storage.Txn, name string, vendor types.Address, count int, tier uint8, prices []uint64) (*Event, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if len(prices) != count {
		return nil, fmt.Errorf("%d prices for %d tickets: %w", len(prices), count, ErrPriceCount)
	}

	exists, err := txn.Has(eventKey(name))
	if err != nil {
		return nil, fmt.Errorf("event lookup: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("event %q: %w", name, ErrDuplicateEvent)
	}

	next, err := r.nextID(txn)
	if err != nil {
		return nil, err
	}
	if uint64(next) > math.MaxUint64-uint64(count) {
		return nil, fmt.Errorf("ticket id space exhausted at %d", next)
	}

	ev := &Event{
		Name:      name,
		Vendor:    vendor,
		FirstID:   next,
		LastID:    next + types.TokenID(count) - 1,
		Tier:      tier,
		Prices:    append([]uint64(nil), prices...),
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("event marshal: %w", err)
	}
	if err := txn.Put(eventKey(name), data); err != nil {
		return nil, fmt.Errorf("event put: %w", err)
	}
	if err := r.setNextID(txn, ev.LastID+1); err != nil {
		return nil, err
	}
	return ev, nil
}

// Lookup returns the event registered under name, or ErrUnknownEvent.
func (r *Registry) Lookup(name string) (*Event, error) {
	var ev *Event
	err := r.db.View(func(txn storage.Txn) error {
		e, err := r.LookupTxn(txn, name)
		if err != nil {
			return err
		}
		ev = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// LookupTxn is Lookup inside the caller's transaction.
func (r *Registry) LookupTxn(txn storage.Txn, name string) (*Event, error) {
	data, err := txn.Get(eventKey(name))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("event %q: %w", name, ErrUnknownEvent)
	}
	if err != nil {
		return nil, fmt.Errorf("event get: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("event unmarshal: %w", err)
	}
	return &ev, nil
}

// GetEventIDs returns the [first, last] ticket range registered under name,
// or the (0, 0) sentinel when the name is unknown. Callers that need to
// distinguish "unknown" from storage problems use Lookup.
func (r *Registry) GetEventIDs(name string) (first, last types.TokenID, err error) {
	ev, err := r.Lookup(name)
	if errors.Is(err, ErrUnknownEvent) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return ev.FirstID, ev.LastID, nil
}

// EventOf returns the event whose range contains id, or ErrUnknownToken.
func (r *Registry) EventOf(id types.TokenID) (*Event, error) {
	var found *Event
	err := r.forEach(func(ev *Event) error {
		if ev.Contains(id) {
			found = ev
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrUnknownToken)
	}
	return found, nil
}

// PriceOf returns the price of a ticket, resolved through its event.
func (r *Registry) PriceOf(id types.TokenID) (uint64, error) {
	ev, err := r.EventOf(id)
	if err != nil {
		return 0, err
	}
	price, _ := ev.PriceOf(id)
	return price, nil
}

// VendorOf returns the vendor of a ticket, resolved through its event.
func (r *Registry) VendorOf(id types.TokenID) (types.Address, error) {
	ev, err := r.EventOf(id)
	if err != nil {
		return types.Address{}, err
	}
	return ev.Vendor, nil
}

// List returns all registered events.
func (r *Registry) List() ([]*Event, error) {
	events := []*Event{}
	err := r.forEach(func(ev *Event) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// NextID returns the next ticket ID the allocator will hand out.
func (r *Registry) NextID() (types.TokenID, error) {
	var next types.TokenID
	err := r.db.View(func(txn storage.Txn) error {
		n, err := r.nextID(txn)
		if err != nil {
			return err
		}
		next = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

var errStopIteration = errors.New("stop iteration")

func (r *Registry) forEach(fn func(*Event) error) error {
	return r.db.ForEach(prefixEvent, func(key, value []byte) error {
		var ev Event
		if err := json.Unmarshal(value, &ev); err != nil {
			return nil // Skip corrupt entries.
		}
		return fn(&ev)
	})
}

func (r *Registry) nextID(txn storage.Txn) (types.TokenID, error) {
	data, err := txn.Get(keyNextID)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return firstTicketID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("next_id get: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("next_id entry has %d bytes", len(data))
	}
	return types.TokenID(binary.BigEndian.Uint64(data)), nil
}

func (r *Registry) setNextID(txn storage.Txn, next types.TokenID) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(next))
	if err := txn.Put(keyNextID, buf[:]); err != nil {
		return fmt.Errorf("next_id put: %w", err)
	}
	return nil
}

func eventKey(name string) []byte {
	key := make([]byte, len(prefixEvent)+len(name))
	copy(key, prefixEvent)
	copy(key[len(prefixEvent):], name)
	return key
}
