// Package rpcclient provides a JSON-RPC 2.0 client for venuemint nodes.
package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/venuemint/venuemint/internal/rpc"
)

// Client is a JSON-RPC 2.0 HTTP client.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 10*time.Second)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int         `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError is returned when the server responds with an error.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes a JSON-RPC method and unmarshals the result into the provided pointer.
// If result is nil, the response result is discarded.
func (c *Client) Call(method string, params, result interface{}) error {
	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.http.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// ── Typed wrappers ──────────────────────────────────────────────────────

// NodeInfo returns basic node status.
func (c *Client) NodeInfo() (*rpc.NodeInfoResult, error) {
	var result rpc.NodeInfoResult
	if err := c.Call("node_getInfo", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateEvent registers a new event and mints its tickets.
func (c *Client) CreateEvent(name, vendor string, count int, tier uint8, prices []uint64) (*rpc.EventResult, error) {
	var result rpc.EventResult
	err := c.Call("event_create", rpc.EventCreateParam{
		Name:   name,
		Vendor: vendor,
		Count:  count,
		Tier:   tier,
		Prices: prices,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EventIDs returns the ticket ID range of an event, or (0, 0) if the
// event name is not registered.
func (c *Client) EventIDs(name string) (first, last uint64, err error) {
	var result rpc.EventIDsResult
	if err := c.Call("event_getIds", rpc.NameParam{Name: name}, &result); err != nil {
		return 0, 0, err
	}
	return result.First, result.Last, nil
}

// EventInfo returns the full record of a registered event.
func (c *Client) EventInfo(name string) (*rpc.EventResult, error) {
	var result rpc.EventResult
	if err := c.Call("event_getInfo", rpc.NameParam{Name: name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListEvents returns all registered events.
func (c *Client) ListEvents() ([]*rpc.EventResult, error) {
	var result rpc.EventListResult
	if err := c.Call("event_list", nil, &result); err != nil {
		return nil, err
	}
	return result.Events, nil
}

// BuyTickets purchases the given tickets of an event for the buyer.
func (c *Client) BuyTickets(buyer, event string, tickets []uint64, payment uint64) (*rpc.ReceiptResult, error) {
	var result rpc.ReceiptResult
	err := c.Call("ticket_buy", rpc.TicketBuyParam{
		Buyer:   buyer,
		Event:   event,
		Tickets: tickets,
		Payment: payment,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BalanceOfBatch returns holdings for positionally paired owners and tickets.
func (c *Client) BalanceOfBatch(owners []string, tickets []uint64) ([]uint64, error) {
	var result rpc.BalancesResult
	err := c.Call("ticket_balanceOfBatch", rpc.BalanceOfBatchParam{
		Owners:  owners,
		Tickets: tickets,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Balances, nil
}

// OwnerOf returns the current holder of a ticket.
func (c *Client) OwnerOf(ticket uint64) (*rpc.OwnerResult, error) {
	var result rpc.OwnerResult
	if err := c.Call("ticket_ownerOf", rpc.TicketParam{Ticket: ticket}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Deposit credits spendable funds to an address and returns the new balance.
func (c *Client) Deposit(address string, amount uint64) (*rpc.FundsBalanceResult, error) {
	var result rpc.FundsBalanceResult
	err := c.Call("funds_deposit", rpc.FundsDepositParam{
		Address: address,
		Amount:  amount,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Balance returns the spendable funds of an address.
func (c *Client) Balance(address string) (*rpc.FundsBalanceResult, error) {
	var result rpc.FundsBalanceResult
	if err := c.Call("funds_getBalance", rpc.AddressParam{Address: address}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
