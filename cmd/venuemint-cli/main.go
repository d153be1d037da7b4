// venuemint-cli is a command-line client for interacting with a venuemintd node.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/venuemint/venuemint/config"
	"github.com/venuemint/venuemint/internal/keys"
	"github.com/venuemint/venuemint/internal/rpcclient"
	"github.com/venuemint/venuemint/pkg/types"
)

// keystoreDir returns the keystore path matching venuemintd's layout:
// <datadir>/<network>/keystore
func keystoreDir(dataDir, network string) string {
	return filepath.Join(dataDir, network, "keystore")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := "http://127.0.0.1:8555"
	dataDir := config.DefaultDataDir()
	network := "mainnet"

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	// Set address HRP based on network.
	if network == "testnet" {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ksDir := keystoreDir(dataDir, network)
	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "event":
		cmdEvent(client, cmdArgs)
	case "buy":
		cmdBuy(client, cmdArgs)
	case "owner":
		cmdOwner(client, cmdArgs)
	case "holdings":
		cmdHoldings(client, cmdArgs)
	case "funds":
		cmdFunds(client, cmdArgs)
	case "account":
		cmdAccount(cmdArgs, ksDir)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: venuemint-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8555)
  --datadir <path>    Data directory (default: ~/.venuemint)
  --network <net>     mainnet (default) or testnet

Commands:
  status                          Show node status
  event create --name <n> --vendor <addr> --count <c> --prices <p1,p2,...> [--tier <t>]
                                  Register an event and mint its tickets
  event info <name>               Show event details
  event ids <name>                Show an event's ticket ID range
  event list                      List all events
  buy --buyer <addr> --event <name> --tickets <id1,id2,...> --payment <amt>
                                  Buy tickets; excess payment is refunded
  owner <ticket_id>               Show who holds a ticket
  holdings --owners <a1,a2,...> --tickets <id1,id2,...>
                                  Show paired owner/ticket balances
  funds deposit --address <addr> --amount <amt>
                                  Credit spendable funds to an address
  funds balance <address>         Show an address's spendable funds

  account new --name <n>          Create a new identity
  account restore --name <n> --mnemonic "..."
                                  Restore an identity from its mnemonic
  account list                    List identities
  account show <name>             Show an identity's address
  account delete <name>           Delete an identity file
`)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	info, err := client.NodeInfo()
	if err != nil {
		fatal("node_getInfo: %v", err)
	}

	fmt.Printf("Network:   %s\n", info.Network)
	fmt.Printf("Events:    %d\n", info.Events)
	fmt.Printf("Next ID:   %d\n", info.NextID)
	fmt.Printf("Inventory: %s\n", info.Inventory)
}

// ── event ───────────────────────────────────────────────────────────────

func cmdEvent(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli event <create|info|ids|list> [flags]")
	}

	switch args[0] {
	case "create":
		cmdEventCreate(client, args[1:])
	case "info":
		cmdEventInfo(client, args[1:])
	case "ids":
		cmdEventIDs(client, args[1:])
	case "list":
		cmdEventList(client)
	default:
		fatal("Unknown event command: %s\nUsage: venuemint-cli event <create|info|ids|list> [flags]", args[0])
	}
}

func cmdEventCreate(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("event create", flag.ExitOnError)
	name := fs.String("name", "", "Event name")
	vendor := fs.String("vendor", "", "Vendor address (receives sale proceeds)")
	count := fs.Int("count", 0, "Number of tickets")
	tier := fs.Uint("tier", 0, "Tier label (0-255)")
	prices := fs.String("prices", "", "Comma-separated ticket prices")
	fs.Parse(args)

	if *name == "" || *vendor == "" || *count <= 0 || *prices == "" {
		fatal("Usage: venuemint-cli event create --name <n> --vendor <addr> --count <c> --prices <p1,p2,...> [--tier <t>]")
	}
	if *tier > 255 {
		fatal("tier must be 0-255")
	}

	priceList, err := parseUintList(*prices)
	if err != nil {
		fatal("invalid prices: %v", err)
	}

	ev, err := client.CreateEvent(*name, *vendor, *count, uint8(*tier), priceList)
	if err != nil {
		fatal("event_create: %v", err)
	}

	fmt.Printf("Event created: %s\n", ev.Name)
	fmt.Printf("  Tickets: %d-%d\n", ev.FirstID, ev.LastID)
	fmt.Printf("  Tier:    %d\n", ev.Tier)
}

func cmdEventInfo(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli event info <name>")
	}

	ev, err := client.EventInfo(args[0])
	if err != nil {
		fatal("event_getInfo: %v", err)
	}

	fmt.Printf("Event:   %s\n", ev.Name)
	fmt.Printf("Vendor:  %s\n", ev.Vendor)
	fmt.Printf("Tickets: %d-%d\n", ev.FirstID, ev.LastID)
	fmt.Printf("Tier:    %d\n", ev.Tier)
	fmt.Printf("Created: %s\n", ev.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println("Prices:")
	for i, p := range ev.Prices {
		fmt.Printf("  #%d: %d\n", ev.FirstID+uint64(i), p)
	}
}

func cmdEventIDs(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli event ids <name>")
	}

	first, last, err := client.EventIDs(args[0])
	if err != nil {
		fatal("event_getIds: %v", err)
	}
	if first == 0 && last == 0 {
		fmt.Printf("Event %q is not registered.\n", args[0])
		return
	}
	fmt.Printf("%d-%d\n", first, last)
}

func cmdEventList(client *rpcclient.Client) {
	events, err := client.ListEvents()
	if err != nil {
		fatal("event_list: %v", err)
	}

	if len(events) == 0 {
		fmt.Println("No events registered.")
		return
	}
	for _, ev := range events {
		fmt.Printf("%-24s tickets %d-%d  tier %d\n", ev.Name, ev.FirstID, ev.LastID, ev.Tier)
	}
}

// ── buy ─────────────────────────────────────────────────────────────────

func cmdBuy(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	buyer := fs.String("buyer", "", "Buyer address")
	event := fs.String("event", "", "Event name")
	tickets := fs.String("tickets", "", "Comma-separated ticket IDs")
	payment := fs.Uint64("payment", 0, "Payment amount")
	fs.Parse(args)

	if *buyer == "" || *event == "" || *tickets == "" {
		fatal("Usage: venuemint-cli buy --buyer <addr> --event <name> --tickets <id1,id2,...> --payment <amt>")
	}

	ids, err := parseUintList(*tickets)
	if err != nil {
		fatal("invalid tickets: %v", err)
	}

	receipt, err := client.BuyTickets(*buyer, *event, ids, *payment)
	if err != nil {
		fatal("ticket_buy: %v", err)
	}

	fmt.Printf("Purchase complete.\n")
	fmt.Printf("  Receipt: %s\n", receipt.ID)
	fmt.Printf("  Tickets: %v\n", receipt.Tickets)
	fmt.Printf("  Total:   %d\n", receipt.Total)
	if refund := *payment - receipt.Total; refund > 0 {
		fmt.Printf("  Refund:  %d\n", refund)
	}
}

// ── owner / holdings ────────────────────────────────────────────────────

func cmdOwner(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli owner <ticket_id>")
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fatal("invalid ticket ID: %v", err)
	}

	owner, err := client.OwnerOf(id)
	if err != nil {
		fatal("ticket_ownerOf: %v", err)
	}
	fmt.Println(owner.Owner)
}

func cmdHoldings(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("holdings", flag.ExitOnError)
	owners := fs.String("owners", "", "Comma-separated owner addresses")
	tickets := fs.String("tickets", "", "Comma-separated ticket IDs")
	fs.Parse(args)

	if *owners == "" || *tickets == "" {
		fatal("Usage: venuemint-cli holdings --owners <a1,a2,...> --tickets <id1,id2,...>")
	}

	ownerList := strings.Split(*owners, ",")
	ids, err := parseUintList(*tickets)
	if err != nil {
		fatal("invalid tickets: %v", err)
	}

	balances, err := client.BalanceOfBatch(ownerList, ids)
	if err != nil {
		fatal("ticket_balanceOfBatch: %v", err)
	}
	for i, bal := range balances {
		fmt.Printf("%s ticket %d: %d\n", ownerList[i], ids[i], bal)
	}
}

// ── funds ───────────────────────────────────────────────────────────────

func cmdFunds(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli funds <deposit|balance> [flags]")
	}

	switch args[0] {
	case "deposit":
		cmdFundsDeposit(client, args[1:])
	case "balance":
		cmdFundsBalance(client, args[1:])
	default:
		fatal("Unknown funds command: %s\nUsage: venuemint-cli funds <deposit|balance> [flags]", args[0])
	}
}

func cmdFundsDeposit(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("funds deposit", flag.ExitOnError)
	address := fs.String("address", "", "Recipient address")
	amount := fs.Uint64("amount", 0, "Amount to credit")
	fs.Parse(args)

	if *address == "" || *amount == 0 {
		fatal("Usage: venuemint-cli funds deposit --address <addr> --amount <amt>")
	}

	result, err := client.Deposit(*address, *amount)
	if err != nil {
		fatal("funds_deposit: %v", err)
	}
	fmt.Printf("Balance: %d\n", result.Balance)
}

func cmdFundsBalance(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli funds balance <address>")
	}

	result, err := client.Balance(args[0])
	if err != nil {
		fatal("funds_getBalance: %v", err)
	}
	fmt.Printf("Balance: %d\n", result.Balance)
}

// ── account ─────────────────────────────────────────────────────────────

func cmdAccount(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli account <new|restore|list|show|delete> [flags]")
	}

	switch args[0] {
	case "new":
		cmdAccountNew(args[1:], ksDir)
	case "restore":
		cmdAccountRestore(args[1:], ksDir)
	case "list":
		cmdAccountList(ksDir)
	case "show":
		cmdAccountShow(args[1:], ksDir)
	case "delete":
		cmdAccountDelete(args[1:], ksDir)
	default:
		fatal("Unknown account command: %s\nUsage: venuemint-cli account <new|restore|list|show|delete> [flags]", args[0])
	}
}

func cmdAccountNew(args []string, ksDir string) {
	fs := flag.NewFlagSet("account new", flag.ExitOnError)
	name := fs.String("name", "", "Identity name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: venuemint-cli account new --name <name>")
	}

	mnemonic, err := keys.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	password := promptNewPassword()

	seed, err := keys.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}

	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	ident, err := ks.Create(*name, seed, password, 0, keys.DefaultParams())
	if err != nil {
		fatal("create identity: %v", err)
	}
	for i := range seed {
		seed[i] = 0
	}

	fmt.Printf("\nIdentity created: %s\n", ident.Name)
	fmt.Printf("Address: %s\n", ident.Address.String())
}

func cmdAccountRestore(args []string, ksDir string) {
	fs := flag.NewFlagSet("account restore", flag.ExitOnError)
	name := fs.String("name", "", "Identity name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (24 words)")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: venuemint-cli account restore --name <name> --mnemonic \"word1 word2 ...\"")
	}

	if !keys.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	password := promptNewPassword()

	seed, err := keys.SeedFromMnemonic(*mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}

	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	ident, err := ks.Create(*name, seed, password, 0, keys.DefaultParams())
	if err != nil {
		fatal("restore identity: %v", err)
	}
	for i := range seed {
		seed[i] = 0
	}

	fmt.Printf("Identity restored: %s\n", ident.Name)
	fmt.Printf("Address: %s\n", ident.Address.String())
}

func cmdAccountList(ksDir string) {
	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	idents, err := ks.List()
	if err != nil {
		fatal("list identities: %v", err)
	}

	if len(idents) == 0 {
		fmt.Println("No identities found.")
		return
	}
	for _, ident := range idents {
		fmt.Printf("%-16s %s\n", ident.Name, ident.Address.String())
	}
}

func cmdAccountShow(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli account show <name>")
	}

	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	ident, err := ks.Get(args[0])
	if err != nil {
		fatal("get identity: %v", err)
	}
	fmt.Println(ident.Address.String())
}

func cmdAccountDelete(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: venuemint-cli account delete <name>")
	}

	ks, err := keys.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	if err := ks.Delete(args[0]); err != nil {
		fatal("delete identity: %v", err)
	}
	fmt.Printf("Identity deleted: %s\n", args[0])
}

// ── Helpers ─────────────────────────────────────────────────────────────

func parseUintList(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	out := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// promptNewPassword reads a password twice and ensures both entries match.
func promptNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return password
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
