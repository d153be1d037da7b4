package node

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/venuemint/venuemint/config"
	"github.com/venuemint/venuemint/internal/rpcclient"
	"github.com/venuemint/venuemint/pkg/types"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.venuemint/db", filepath.Join(home, ".venuemint/db")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDefaultInventory(t *testing.T) {
	a := DefaultInventory()
	b := DefaultInventory()
	if a != b {
		t.Error("default inventory is not deterministic")
	}
	if a == (types.Address{}) {
		t.Error("default inventory is the zero address")
	}
}

func TestResolveInventory_Override(t *testing.T) {
	var want types.Address
	want[0] = 0x42

	addr, err := resolveInventory(want.String())
	if err != nil {
		t.Fatalf("resolveInventory: %v", err)
	}
	if addr != want {
		t.Errorf("address = %x, want %x", addr, want)
	}
}

func TestResolveInventory_Invalid(t *testing.T) {
	if _, err := resolveInventory("not-an-address"); err == nil {
		t.Fatal("expected error for invalid override")
	}
}

func TestResolveInventory_Default(t *testing.T) {
	addr, err := resolveInventory("")
	if err != nil {
		t.Fatalf("resolveInventory: %v", err)
	}
	if addr != DefaultInventory() {
		t.Errorf("empty override should yield the default inventory")
	}
}

func TestNodeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()

	cfg := config.Default(config.Testnet)
	cfg.DataDir = tmpDir
	cfg.RPC.Port = 0 // Use random port to avoid conflicts.
	cfg.Log.Level = "error"

	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs: %v", err)
	}

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n.RPCAddr() == "" {
		t.Error("RPCAddr should not be empty")
	}

	// Exercise the node over its own RPC surface.
	client := rpcclient.New("http://" + n.RPCAddr() + "/")
	info, err := client.NodeInfo()
	if err != nil {
		t.Fatalf("NodeInfo: %v", err)
	}
	if info.Network != "testnet" {
		t.Errorf("network = %q, want testnet", info.Network)
	}
	if info.Inventory != DefaultInventory().String() {
		t.Errorf("inventory = %q, want default", info.Inventory)
	}

	// Stop should not panic or error.
	n.Stop()
}

func TestNodeEphemeral(t *testing.T) {
	cfg := config.Default(config.Testnet)
	cfg.Ephemeral = true
	cfg.RPC.Port = 0
	cfg.Log.Level = "error"

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	vendor := types.Address{0x01}
	if _, err := n.Engine().CreateEvent("gala", vendor, 1, 0, []uint64{10}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	events, err := n.Registry().List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}

	n.Stop()
}
