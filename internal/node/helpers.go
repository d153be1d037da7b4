package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/venuemint/venuemint/pkg/crypto"
	"github.com/venuemint/venuemint/pkg/types"
)

// inventoryLabel seeds the default inventory address. Every node derives
// the same address, so a network agrees on where unsold tickets live.
const inventoryLabel = "venuemint/inventory/v1"

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// resolveInventory determines the inventory address from the config
// override, falling back to the derived default.
func resolveInventory(override string) (types.Address, error) {
	if override != "" {
		addr, err := types.ParseAddress(override)
		if err != nil {
			return types.Address{}, fmt.Errorf("invalid inventory address: %w", err)
		}
		return addr, nil
	}
	return DefaultInventory(), nil
}

// DefaultInventory returns the built-in inventory address. It is a hash
// of a fixed label, so no key pair controls it.
func DefaultInventory() types.Address {
	h := crypto.Hash([]byte(inventoryLabel))
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}
