package rpc

import (
	"time"

	"github.com/venuemint/venuemint/internal/registry"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeConflict       = -32001 // Duplicate event name.
	CodeRejected       = -32002 // Payment or balance failure.
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// EventCreateParam is used by event_create.
type EventCreateParam struct {
	Name   string   `json:"name"`
	Vendor string   `json:"vendor"`
	Count  int      `json:"count"`
	Tier   uint8    `json:"tier"`
	Prices []uint64 `json:"prices"`
}

// NameParam is used by endpoints that take an event name.
type NameParam struct {
	Name string `json:"name"`
}

// TicketBuyParam is used by ticket_buy.
type TicketBuyParam struct {
	Buyer   string   `json:"buyer"`
	Event   string   `json:"event"`
	Tickets []uint64 `json:"tickets"`
	Payment uint64   `json:"payment"`
}

// BalanceOfBatchParam is used by ticket_balanceOfBatch. Owners and tickets
// are paired positionally.
type BalanceOfBatchParam struct {
	Owners  []string `json:"owners"`
	Tickets []uint64 `json:"tickets"`
}

// TicketParam is used by ticket_ownerOf.
type TicketParam struct {
	Ticket uint64 `json:"ticket"`
}

// FundsDepositParam is used by funds_deposit.
type FundsDepositParam struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// AddressParam is used by funds_getBalance.
type AddressParam struct {
	Address string `json:"address"`
}

// ── Result types ────────────────────────────────────────────────────────

// EventResult describes a registered event.
type EventResult struct {
	Name      string    `json:"name"`
	Vendor    string    `json:"vendor"`
	FirstID   uint64    `json:"first_id"`
	LastID    uint64    `json:"last_id"`
	Tier      uint8     `json:"tier"`
	Prices    []uint64  `json:"prices"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEventResult converts a registry event for RPC responses.
func NewEventResult(ev *registry.Event) *EventResult {
	return &EventResult{
		Name:      ev.Name,
		Vendor:    ev.Vendor.String(),
		FirstID:   uint64(ev.FirstID),
		LastID:    uint64(ev.LastID),
		Tier:      ev.Tier,
		Prices:    ev.Prices,
		CreatedAt: ev.CreatedAt,
	}
}

// EventIDsResult is returned by event_getIds. (0, 0) means the event name
// is not registered.
type EventIDsResult struct {
	First uint64 `json:"first"`
	Last  uint64 `json:"last"`
}

// EventListResult is returned by event_list.
type EventListResult struct {
	Events []*EventResult `json:"events"`
}

// ReceiptResult is returned by ticket_buy.
type ReceiptResult struct {
	ID      string    `json:"id"`
	Buyer   string    `json:"buyer"`
	Event   string    `json:"event"`
	Tickets []uint64  `json:"tickets"`
	Total   uint64    `json:"total"`
	Issued  time.Time `json:"issued"`
}

// BalancesResult is returned by ticket_balanceOfBatch.
type BalancesResult struct {
	Balances []uint64 `json:"balances"`
}

// OwnerResult is returned by ticket_ownerOf.
type OwnerResult struct {
	Ticket uint64 `json:"ticket"`
	Owner  string `json:"owner"`
}

// FundsBalanceResult is returned by funds_deposit and funds_getBalance.
type FundsBalanceResult struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// NodeInfoResult is returned by node_getInfo.
type NodeInfoResult struct {
	Network   string `json:"network"`
	Events    int    `json:"events"`
	NextID    uint64 `json:"next_id"`
	Inventory string `json:"inventory"`
}
