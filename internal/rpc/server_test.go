package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/venuemint/venuemint/config"
	"github.com/venuemint/venuemint/internal/funds"
	"github.com/venuemint/venuemint/internal/ledger"
	klog "github.com/venuemint/venuemint/internal/log"
	"github.com/venuemint/venuemint/internal/market"
	"github.com/venuemint/venuemint/internal/registry"
	"github.com/venuemint/venuemint/internal/storage"
	"github.com/venuemint/venuemint/pkg/types"
)

// testEnv holds all components for an RPC test.
type testEnv struct {
	server *Server
	engine *market.Engine
	funds  *funds.Store
	url    string
}

func testAddr(b byte) types.Address {
	var a types.Address
	a[0] = b
	return a
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	db := storage.NewMemory()
	reg := registry.New(db)
	led := ledger.New(db)
	fnd := funds.New(db)
	engine := market.New(db, reg, led, fnd, testAddr(0xFF))

	srv := New("127.0.0.1:0", config.Mainnet, engine, reg, led, fnd)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server: srv,
		engine: engine,
		funds:  fnd,
		url:    fmt.Sprintf("http://%s/", srv.Addr()),
	}
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

func decodeResult(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

// createTestEvent registers "gala" with 3 tickets priced 100/200/300.
func createTestEvent(t *testing.T, env *testEnv) {
	t.Helper()
	if _, err := env.engine.CreateEvent("gala", testAddr(1), 3, 1, []uint64{100, 200, 300}); err != nil {
		t.Fatalf("create event: %v", err)
	}
}

// ── Tests ───────────────────────────────────────────────────────────────

func TestRPC_NodeGetInfo(t *testing.T) {
	env := setupTestEnv(t)
	createTestEvent(t, env)

	var result NodeInfoResult
	decodeResult(t, rpcCall(t, env.url, "node_getInfo", nil), &result)

	if result.Network != "mainnet" {
		t.Errorf("network = %q, want mainnet", result.Network)
	}
	if result.Events != 1 {
		t.Errorf("events = %d, want 1", result.Events)
	}
	if result.NextID != 4 {
		t.Errorf("next_id = %d, want 4", result.NextID)
	}
	if result.Inventory == "" {
		t.Error("inventory address is empty")
	}
}

func TestRPC_EventCreate(t *testing.T) {
	env := setupTestEnv(t)

	params := EventCreateParam{
		Name:   "gala",
		Vendor: testAddr(1).String(),
		Count:  2,
		Tier:   3,
		Prices: []uint64{50, 60},
	}
	var result EventResult
	decodeResult(t, rpcCall(t, env.url, "event_create", params), &result)

	if result.Name != "gala" || result.FirstID != 1 || result.LastID != 2 || result.Tier != 3 {
		t.Errorf("event_create result = %+v", result)
	}

	// Duplicate name maps to the conflict code.
	resp := rpcCall(t, env.url, "event_create", params)
	if resp.Error == nil || resp.Error.Code != CodeConflict {
		t.Errorf("duplicate event error = %+v, want code %d", resp.Error, CodeConflict)
	}

	// Bad input maps to invalid params.
	params.Name = "other"
	params.Prices = []uint64{50}
	resp = rpcCall(t, env.url, "event_create", params)
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("price mismatch error = %+v, want code %d", resp.Error, CodeInvalidParams)
	}
}

func TestRPC_EventGetIDs(t *testing.T) {
	env := setupTestEnv(t)
	createTestEvent(t, env)

	var result EventIDsResult
	decodeResult(t, rpcCall(t, env.url, "event_getIds", NameParam{Name: "gala"}), &result)
	if result.First != 1 || result.Last != 3 {
		t.Errorf("event_getIds = (%d, %d), want (1, 3)", result.First, result.Last)
	}

	// Unknown event returns the (0, 0) sentinel, not an error.
	decodeResult(t, rpcCall(t, env.url, "event_getIds", NameParam{Name: "nope"}), &result)
	if result.First != 0 || result.Last != 0 {
		t.Errorf("event_getIds unknown = (%d, %d), want (0, 0)", result.First, result.Last)
	}
}

func TestRPC_EventGetInfo(t *testing.T) {
	env := setupTestEnv(t)
	createTestEvent(t, env)

	var result EventResult
	decodeResult(t, rpcCall(t, env.url, "event_getInfo", NameParam{Name: "gala"}), &result)
	if result.Name != "gala" || len(result.Prices) != 3 {
		t.Errorf("event_getInfo = %+v", result)
	}

	// Unknown event is an explicit not-found, unlike event_getIds.
	resp := rpcCall(t, env.url, "event_getInfo", NameParam{Name: "nope"})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("unknown event error = %+v, want code %d", resp.Error, CodeNotFound)
	}
}

func TestRPC_EventList(t *testing.T) {
	env := setupTestEnv(t)
	createTestEvent(t, env)
	if _, err := env.engine.CreateEvent("expo", testAddr(2), 1, 0, []uint64{10}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	var result EventListResult
	decodeResult(t, rpcCall(t, env.url, "event_list", nil), &result)
	if len(result.Events) != 2 {
		t.Errorf("event_list = %d events, want 2", len(result.Events))
	}
}

func TestRPC_TicketBuy(t *testing.T) {
	env := setupTestEnv(t)
	createTestEvent(t, env)
	buyer := testAddr(2)
	if err := env.funds.Deposit(buyer, 500); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	params := TicketBuyParam{
		Buyer:   buyer.String(),
		Event:   "gala",
		Tickets: []uint64{1, 2},
		Payment: 400,
	}
	var result ReceiptResult
	decodeResult(t, rpcCall(t, env.url, "ticket_buy", params), &result)

	if result.Total != 300 || len(result.Tickets) != 2 || result.ID == "" {
		t.Errorf("ticket_buy receipt = %+v", result)
	}

	// Ownership moved.
	var owner OwnerResult
	decodeResult(t, rpcCall(t, env.url, "ticket_ownerOf", TicketParam{Ticket: 1}), &owner)
	if owner.Owner != buyer.String() {
		t.Errorf("owner = %q, want buyer", owner.Owner)
	}

	// Excess refunded: 500 - 300.
	var bal FundsBalanceResult
	decodeResult(t, rpcCall(t, env.url, "funds_getBalance", AddressParam{Address: buyer.String()}), &bal)
	if bal.Balance != 200 {
		t.Errorf("buyer balance = %d, want 200", bal.Balance)
	}

	// Double sale maps to the rejected code.
	resp := rpcCall(t, env.url, "ticket_buy", params)
	if resp.Error == nil || resp.Error.Code != CodeRejected {
		t.Errorf("double sale error = %+v, want code %d", resp.Error, CodeRejected)
	}
}

func TestRPC_TicketBuy_Errors(t *testing.T) {
	env := setupTestEnv(t)
	createTestEvent(t, env)
	buyer := testAddr(2).String()

	tests := []struct {
		name     string
		params   TicketBuyParam
		wantCode int
	}{
		{"unknown event", TicketBuyParam{Buyer: buyer, Event: "nope", Tickets: []uint64{1}, Payment: 100}, CodeNotFound},
		{"bad buyer address", TicketBuyParam{Buyer: "junk", Event: "gala", Tickets: []uint64{1}, Payment: 100}, CodeInvalidParams},
		{"out of range ticket", TicketBuyParam{Buyer: buyer, Event: "gala", Tickets: []uint64{9}, Payment: 100}, CodeInvalidParams},
		{"no tickets", TicketBuyParam{Buyer: buyer, Event: "gala", Payment: 100}, CodeInvalidParams},
		{"short payment", TicketBuyParam{Buyer: buyer, Event: "gala", Tickets: []uint64{1}, Payment: 99}, CodeRejected},
		{"no funds", TicketBuyParam{Buyer: buyer, Event: "gala", Tickets: []uint64{1}, Payment: 100}, CodeRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, env.url, "ticket_buy", tt.params)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %d", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestRPC_TicketBalanceOfBatch(t *testing.T) {
	env := setupTestEnv(t)
	createTestEvent(t, env)
	inventory := env.engine.Inventory().String()

	params := BalanceOfBatchParam{
		Owners:  []string{inventory, testAddr(2).String(), inventory},
		Tickets: []uint64{1, 1, 3},
	}
	var result BalancesResult
	decodeResult(t, rpcCall(t, env.url, "ticket_balanceOfBatch", params), &result)

	want := []uint64{1, 0, 1}
	for i := range want {
		if result.Balances[i] != want[i] {
			t.Errorf("balance[%d] = %d, want %d", i, result.Balances[i], want[i])
		}
	}

	// Length mismatch maps to invalid params.
	params.Tickets = []uint64{1}
	resp := rpcCall(t, env.url, "ticket_balanceOfBatch", params)
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("length mismatch error = %+v, want code %d", resp.Error, CodeInvalidParams)
	}
}

func TestRPC_TicketOwnerOf_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "ticket_ownerOf", TicketParam{Ticket: 42})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("error = %+v, want code %d", resp.Error, CodeNotFound)
	}
}

func TestRPC_FundsDeposit(t *testing.T) {
	env := setupTestEnv(t)
	addr := testAddr(5).String()

	var result FundsBalanceResult
	decodeResult(t, rpcCall(t, env.url, "funds_deposit", FundsDepositParam{Address: addr, Amount: 100}), &result)
	if result.Balance != 100 {
		t.Errorf("balance after deposit = %d, want 100", result.Balance)
	}
	decodeResult(t, rpcCall(t, env.url, "funds_deposit", FundsDepositParam{Address: addr, Amount: 50}), &result)
	if result.Balance != 150 {
		t.Errorf("balance after second deposit = %d, want 150", result.Balance)
	}

	resp := rpcCall(t, env.url, "funds_deposit", FundsDepositParam{Address: addr, Amount: 0})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("zero deposit error = %+v, want code %d", resp.Error, CodeInvalidParams)
	}
}

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "bogus_method", nil)
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error = %+v, want code %d", resp.Error, CodeMethodNotFound)
	}
}

func TestRPC_Transport(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("GET rejected", func(t *testing.T) {
		resp, err := http.Get(env.url)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		var rpcResp Response
		json.NewDecoder(resp.Body).Decode(&rpcResp)
		if rpcResp.Error == nil || rpcResp.Error.Code != CodeInvalidRequest {
			t.Errorf("error = %+v, want code %d", rpcResp.Error, CodeInvalidRequest)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		resp, err := http.Post(env.url, "application/json", strings.NewReader("{not json"))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer resp.Body.Close()
		var rpcResp Response
		json.NewDecoder(resp.Body).Decode(&rpcResp)
		if rpcResp.Error == nil || rpcResp.Error.Code != CodeParseError {
			t.Errorf("error = %+v, want code %d", rpcResp.Error, CodeParseError)
		}
	})

	t.Run("wrong jsonrpc version", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"jsonrpc": "1.0",
			"method":  "event_list",
			"id":      1,
		})
		resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer resp.Body.Close()
		var rpcResp Response
		json.NewDecoder(resp.Body).Decode(&rpcResp)
		if rpcResp.Error == nil || rpcResp.Error.Code != CodeInvalidRequest {
			t.Errorf("error = %+v, want code %d", rpcResp.Error, CodeInvalidRequest)
		}
	})
}
