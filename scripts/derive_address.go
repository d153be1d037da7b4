// derive_address.go prints the identity address for a BIP-39 mnemonic file.
// Usage: go run scripts/derive_address.go <mnemonicfile> [account]
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/venuemint/venuemint/internal/keys"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_address <mnemonicfile> [account]")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	mnemonic := strings.TrimSpace(string(data))
	if !keys.ValidateMnemonic(mnemonic) {
		fmt.Fprintln(os.Stderr, "invalid mnemonic")
		os.Exit(1)
	}

	account := uint64(0)
	if len(os.Args) > 2 {
		account, err = strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	seed, err := keys.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	master, err := keys.NewMasterKey(seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	hdKey, err := master.DeriveIdentity(uint32(account))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("account=%d\n", account)
	fmt.Printf("address=%s\n", hdKey.Address().String())
}
