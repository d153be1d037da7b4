// Package market implements the purchase engine.
//
// The engine owns the write path: event creation and ticket sales run one
// at a time under its mutex, and each runs inside a single storage
// transaction so a failure rolls back every ledger and funds movement.
package market

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/venuemint/venuemint/internal/funds"
	"github.com/venuemint/venuemint/internal/ledger"
	"github.com/venuemint/venuemint/internal/log"
	"github.com/venuemint/venuemint/internal/registry"
	"github.com/venuemint/venuemint/internal/storage"
	"github.com/venuemint/venuemint/pkg/types"
)

var (
	// ErrNoTickets is returned when a purchase names no tickets.
	ErrNoTickets = errors.New("no tickets requested")

	// ErrInvalidTicket is returned when a requested ticket falls outside
	// the event's range.
	ErrInvalidTicket = errors.New("ticket not in event range")

	// ErrInsufficientPayment is returned when the offered payment does not
	// cover the total price.
	ErrInsufficientPayment = errors.New("insufficient payment")
)

// Engine coordinates the registry, ledger and funds accounts.
type Engine struct {
	mu        sync.Mutex
	db        storage.DB
	registry  *registry.Registry
	ledger    *ledger.Ledger
	funds     *funds.Store
	inventory types.Address
	notifier  notifier
}

// New creates an engine. Unsold tickets are held by the inventory address.
func New(db storage.DB, reg *registry.Registry, led *ledger.Ledger, fnd *funds.Store, inventory types.Address) *Engine {
	return &Engine{
		db:        db,
		registry:  reg,
		ledger:    led,
		funds:     fnd,
		inventory: inventory,
	}
}

// Inventory returns the address holding unsold tickets.
func (e *Engine) Inventory() types.Address {
	return e.inventory
}

// Subscribe registers a notification subscriber.
func (e *Engine) Subscribe(buffer int) <-chan Notification {
	return e.notifier.Subscribe(buffer)
}

// Close shuts down notification delivery.
func (e *Engine) Close() {
	e.notifier.close()
}

// CreateEvent registers an event and mints its tickets to the inventory
// address, atomically. On success a BatchMinted notification is published.
func (e *Engine) CreateEvent(name string, vendor types.Address, count int, tier uint8, prices []uint64) (*registry.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ev *registry.Event
	err := e.db.Update(func(txn storage.Txn) error {
		created, err := e.registry.CreateEvent(txn, name, vendor, count, tier, prices)
		if err != nil {
			return err
		}
		ids := created.IDs()
		quantities := make([]uint64, len(ids))
		for i := range quantities {
			quantities[i] = 1
		}
		if err := e.ledger.MintBatch(txn, e.inventory, ids, quantities); err != nil {
			return err
		}
		ev = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := ev.IDs()
	quantities := make([]uint64, len(ids))
	for i := range quantities {
		quantities[i] = 1
	}
	e.notifier.publish(BatchMinted{
		Event:      ev.Name,
		Owner:      e.inventory,
		IDs:        ids,
		Quantities: quantities,
	})

	log.Market.Info().
		Str("event", ev.Name).
		Str("vendor", ev.Vendor.String()).
		Uint64("first_id", uint64(ev.FirstID)).
		Uint64("last_id", uint64(ev.LastID)).
		Msg("event created")
	return ev, nil
}

// BuyTickets sells the named tickets of an event to buyer.
//
// The buyer's full payment is withdrawn, each ticket moves from inventory
// to the buyer, the vendor is credited exactly the total price, and any
// excess payment is refunded to the buyer. All of it happens in one
// transaction: if any ticket is unavailable or the buyer cannot pay,
// nothing changes.
func (e *Engine) BuyTickets(buyer types.Address, eventName string, ids []types.TokenID, payment uint64) (*Receipt, error) {
	if len(ids) == 0 {
		return nil, ErrNoTickets
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		total  uint64
		vendor types.Address
	)
	err := e.db.Update(func(txn storage.Txn) error {
		ev, err := e.registry.LookupTxn(txn, eventName)
		if err != nil {
			return err
		}
		vendor = ev.Vendor

		total = 0
		for _, id := range ids {
			price, ok := ev.PriceOf(id)
			if !ok {
				return fmt.Errorf("ticket %s for event %q: %w", id, eventName, ErrInvalidTicket)
			}
			if total > math.MaxUint64-price {
				return fmt.Errorf("total price overflows for event %q", eventName)
			}
			total += price
		}
		if payment < total {
			return fmt.Errorf("offered %d, total %d: %w", payment, total, ErrInsufficientPayment)
		}

		if err := e.funds.WithdrawTxn(txn, buyer, payment); err != nil {
			return err
		}
		for _, id := range ids {
			if err := e.ledger.Transfer(txn, e.inventory, buyer, id); err != nil {
				return err
			}
		}
		if err := e.funds.DepositTxn(txn, ev.Vendor, total); err != nil {
			return err
		}
		if refund := payment - total; refund > 0 {
			if err := e.funds.DepositTxn(txn, buyer, refund); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		ID:      receiptID(buyer, eventName, ids, total),
		Buyer:   buyer,
		Event:   eventName,
		Tickets: append([]types.TokenID(nil), ids...),
		Total:   total,
		Issued:  time.Now().UTC(),
	}

	e.notifier.publish(TicketsSold{
		Event: eventName,
		Buyer: buyer,
		IDs:   receipt.Tickets,
		Total: total,
	})

	log.Market.Info().
		Str("event", eventName).
		Str("buyer", buyer.String()).
		Str("vendor", vendor.String()).
		Int("tickets", len(ids)).
		Uint64("total", total).
		Msg("tickets sold")
	return receipt, nil
}
