package rpc

import (
	"errors"
	"fmt"

	"github.com/venuemint/venuemint/internal/funds"
	"github.com/venuemint/venuemint/internal/ledger"
	"github.com/venuemint/venuemint/internal/market"
	"github.com/venuemint/venuemint/internal/registry"
	"github.com/venuemint/venuemint/pkg/types"
)

// domainError maps a core error to a JSON-RPC error object.
func domainError(err error) *Error {
	switch {
	case errors.Is(err, registry.ErrInvalidName),
		errors.Is(err, registry.ErrInvalidCount),
		errors.Is(err, registry.ErrPriceCount),
		errors.Is(err, ledger.ErrLengthMismatch),
		errors.Is(err, market.ErrNoTickets),
		errors.Is(err, market.ErrInvalidTicket):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, registry.ErrUnknownEvent),
		errors.Is(err, registry.ErrUnknownToken),
		errors.Is(err, ledger.ErrNoHolder):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, registry.ErrDuplicateEvent):
		return &Error{Code: CodeConflict, Message: err.Error()}
	case errors.Is(err, market.ErrInsufficientPayment),
		errors.Is(err, funds.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientBalance):
		return &Error{Code: CodeRejected, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}

func parseAddress(field, s string) (types.Address, *Error) {
	if s == "" {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("%s is required", field)}
	}
	addr, err := types.ParseAddress(s)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid %s: %v", field, err)}
	}
	return addr, nil
}

func toTokenIDs(raw []uint64) []types.TokenID {
	ids := make([]types.TokenID, len(raw))
	for i, v := range raw {
		ids[i] = types.TokenID(v)
	}
	return ids
}

func fromTokenIDs(ids []types.TokenID) []uint64 {
	raw := make([]uint64, len(ids))
	for i, id := range ids {
		raw[i] = uint64(id)
	}
	return raw
}

// ── Node endpoints ──────────────────────────────────────────────────────

func (s *Server) handleNodeGetInfo(req *Request) (interface{}, *Error) {
	events, err := s.registry.List()
	if err != nil {
		return nil, domainError(err)
	}
	next, err := s.registry.NextID()
	if err != nil {
		return nil, domainError(err)
	}
	return &NodeInfoResult{
		Network:   string(s.network),
		Events:    len(events),
		NextID:    uint64(next),
		Inventory: s.engine.Inventory().String(),
	}, nil
}

// ── Event endpoints ─────────────────────────────────────────────────────

func (s *Server) handleEventCreate(req *Request) (interface{}, *Error) {
	var params EventCreateParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	vendor, rpcErr := parseAddress("vendor", params.Vendor)
	if rpcErr != nil {
		return nil, rpcErr
	}

	ev, err := s.engine.CreateEvent(params.Name, vendor, params.Count, params.Tier, params.Prices)
	if err != nil {
		return nil, domainError(err)
	}
	return NewEventResult(ev), nil
}

func (s *Server) handleEventGetIDs(req *Request) (interface{}, *Error) {
	var params NameParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Name == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "name is required"}
	}

	first, last, err := s.registry.GetEventIDs(params.Name)
	if err != nil {
		return nil, domainError(err)
	}
	return &EventIDsResult{First: uint64(first), Last: uint64(last)}, nil
}

func (s *Server) handleEventGetInfo(req *Request) (interface{}, *Error) {
	var params NameParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Name == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "name is required"}
	}

	ev, err := s.registry.Lookup(params.Name)
	if err != nil {
		return nil, domainError(err)
	}
	return NewEventResult(ev), nil
}

func (s *Server) handleEventList(req *Request) (interface{}, *Error) {
	events, err := s.registry.List()
	if err != nil {
		return nil, domainError(err)
	}
	results := make([]*EventResult, len(events))
	for i, ev := range events {
		results[i] = NewEventResult(ev)
	}
	return &EventListResult{Events: results}, nil
}

// ── Ticket endpoints ────────────────────────────────────────────────────

func (s *Server) handleTicketBuy(req *Request) (interface{}, *Error) {
	var params TicketBuyParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	buyer, rpcErr := parseAddress("buyer", params.Buyer)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if params.Event == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "event is required"}
	}

	receipt, err := s.engine.BuyTickets(buyer, params.Event, toTokenIDs(params.Tickets), params.Payment)
	if err != nil {
		return nil, domainError(err)
	}
	return &ReceiptResult{
		ID:      receipt.ID.String(),
		Buyer:   receipt.Buyer.String(),
		Event:   receipt.Event,
		Tickets: fromTokenIDs(receipt.Tickets),
		Total:   receipt.Total,
		Issued:  receipt.Issued,
	}, nil
}

func (s *Server) handleTicketBalanceOfBatch(req *Request) (interface{}, *Error) {
	var params BalanceOfBatchParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}

	owners := make([]types.Address, len(params.Owners))
	for i, o := range params.Owners {
		addr, rpcErr := parseAddress("owner", o)
		if rpcErr != nil {
			return nil, rpcErr
		}
		owners[i] = addr
	}

	balances, err := s.ledger.BalanceOfBatch(owners, toTokenIDs(params.Tickets))
	if err != nil {
		return nil, domainError(err)
	}
	return &BalancesResult{Balances: balances}, nil
}

func (s *Server) handleTicketOwnerOf(req *Request) (interface{}, *Error) {
	var params TicketParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}

	owner, err := s.ledger.OwnerOf(types.TokenID(params.Ticket))
	if err != nil {
		return nil, domainError(err)
	}
	return &OwnerResult{Ticket: params.Ticket, Owner: owner.String()}, nil
}

// ── Funds endpoints ─────────────────────────────────────────────────────

func (s *Server) handleFundsDeposit(req *Request) (interface{}, *Error) {
	var params FundsDepositParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress("address", params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if params.Amount == 0 {
		return nil, &Error{Code: CodeInvalidParams, Message: "amount must be positive"}
	}

	if err := s.funds.Deposit(addr, params.Amount); err != nil {
		return nil, domainError(err)
	}
	balance, err := s.funds.Balance(addr)
	if err != nil {
		return nil, domainError(err)
	}
	return &FundsBalanceResult{Address: addr.String(), Balance: balance}, nil
}

func (s *Server) handleFundsGetBalance(req *Request) (interface{}, *Error) {
	var params AddressParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress("address", params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	balance, err := s.funds.Balance(addr)
	if err != nil {
		return nil, domainError(err)
	}
	return &FundsBalanceResult{Address: addr.String(), Balance: balance}, nil
}
