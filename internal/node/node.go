// Package node provides a reusable venuemint node that can be embedded
// in any binary.
package node

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/venuemint/venuemint/config"
	"github.com/venuemint/venuemint/internal/funds"
	"github.com/venuemint/venuemint/internal/ledger"
	klog "github.com/venuemint/venuemint/internal/log"
	"github.com/venuemint/venuemint/internal/market"
	"github.com/venuemint/venuemint/internal/registry"
	"github.com/venuemint/venuemint/internal/rpc"
	"github.com/venuemint/venuemint/internal/storage"
	"github.com/venuemint/venuemint/pkg/types"
)

// Node is a fully-initialized venuemint node.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Core
	db       storage.DB
	registry *registry.Registry
	ledger   *ledger.Ledger
	funds    *funds.Store
	engine   *market.Engine

	// RPC
	rpcServer *rpc.Server

	// Lifecycle
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates and initializes a new Node. It performs all setup steps
// (logger, storage, ledger, registry, market engine, RPC) but does NOT
// start serving. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Set address HRP ──────────────────────────────────────────
	if cfg.Network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	// ── 2. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" && !cfg.Ephemeral {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/venuemint.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	logger.Info().
		Str("network", string(cfg.Network)).
		Bool("ephemeral", cfg.Ephemeral).
		Msg("Starting VenueMint Node")

	// ── 3. Open storage ─────────────────────────────────────────────
	var db storage.DB
	if cfg.Ephemeral {
		db = storage.NewMemory()
		logger.Info().Msg("Using in-memory store")
	} else {
		bdb, err := storage.NewBadger(cfg.DBDir())
		if err != nil {
			return nil, fmt.Errorf("open database at %s: %w", cfg.DBDir(), err)
		}
		db = bdb
		logger.Info().Str("path", cfg.DBDir()).Msg("Database opened")
	}

	// ── 4. Core components ──────────────────────────────────────────
	reg := registry.New(db)
	led := ledger.New(db)
	fnd := funds.New(db)

	inventory, err := resolveInventory(cfg.Inventory)
	if err != nil {
		db.Close()
		return nil, err
	}
	engine := market.New(db, reg, led, fnd, inventory)

	next, err := reg.NextID()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read allocator state: %w", err)
	}
	events, err := reg.List()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read registry state: %w", err)
	}
	logger.Info().
		Int("events", len(events)).
		Uint64("next_id", uint64(next)).
		Str("inventory", inventory.String()).
		Msg("Market state loaded")

	// ── 5. RPC server ───────────────────────────────────────────────
	var rpcServer *rpc.Server
	if cfg.RPC.Enabled {
		rpcAddr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		rpcServer = rpc.New(rpcAddr, cfg.Network, engine, reg, led, fnd, cfg.RPC)
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	return &Node{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		registry:  reg,
		ledger:    led,
		funds:     fnd,
		engine:    engine,
		rpcServer: rpcServer,
		done:      make(chan struct{}),
	}, nil
}

// Start binds the RPC listener and launches the notification watcher.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start RPC: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server listening")
	}

	notes := n.engine.Subscribe(64)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.watchNotifications(notes)
	}()

	n.logger.Info().Msg("Node started successfully")
	return nil
}

// watchNotifications logs market activity until the node stops.
func (n *Node) watchNotifications(notes <-chan market.Notification) {
	for {
		select {
		case <-n.done:
			return
		case note, ok := <-notes:
			if !ok {
				return
			}
			switch ev := note.(type) {
			case market.BatchMinted:
				n.logger.Info().
					Str("event", ev.Event).
					Str("owner", ev.Owner.String()).
					Int("tickets", len(ev.IDs)).
					Msg("Tickets minted")
			case market.TicketsSold:
				n.logger.Info().
					Str("event", ev.Event).
					Str("buyer", ev.Buyer.String()).
					Int("tickets", len(ev.IDs)).
					Uint64("total", ev.Total).
					Msg("Tickets sold")
			}
		}
	}
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	close(n.done)
	n.engine.Close()
	n.wg.Wait()

	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Engine returns the market engine for embedding binaries.
func (n *Node) Engine() *market.Engine {
	return n.engine
}

// Registry returns the event registry.
func (n *Node) Registry() *registry.Registry {
	return n.registry
}
