package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arctek/core/internal/api"
	"github.com/Arctek/core/internal/collateral"
	"github.com/Arctek/core/internal/logger"
	"github.com/Arctek/core/internal/oracle"
	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/replica"
	"github.com/Arctek/core/internal/storage"
	"github.com/Arctek/core/internal/updater"
	"github.com/Arctek/core/internal/vault"
)

// Gateway bundles the running services of one gateway process.
type Gateway struct {
	cfg *Config

	db          *storage.Storage
	vaultParams *params.VaultParams
	apiServer   *api.Server
	replicaSrv  *replica.Server
}

// NewGateway wires storage, stores, the updater, and the servers.
func NewGateway(cfg *Config) (*Gateway, error) {
	db, err := storage.New(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open storage:\n%w", err)
	}

	vaultParams := params.NewVaultParams(db)
	managerParams := params.NewManagerParams(db, vaultParams)
	oracles := oracle.NewRegistry(db)
	collaterals := collateral.NewRegistry(db)
	positions := vault.New(db)

	u, err := updater.New(db, managerParams, oracles, collaterals, positions)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create updater:\n%w", err)
	}

	replicaSrv, err := replica.NewServer(db, cfg.PrivateKey, cfg.QUICAddress)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create replica server:\n%w", err)
	}

	return &Gateway{
		cfg:         cfg,
		db:          db,
		vaultParams: vaultParams,
		apiServer:   api.New(cfg.HTTPAddress, u, vaultParams, collaterals),
		replicaSrv:  replicaSrv,
	}, nil
}

// Run starts the gateway and blocks until interrupted.
func (g *Gateway) Run() error {
	defer g.db.Close()

	if g.cfg.ReplicaOf != "" {
		if err := g.mirror(); err != nil {
			return fmt.Errorf("mirror primary:\n%w", err)
		}
	}

	if g.cfg.Bootstrap {
		if err := g.bootstrap(); err != nil {
			return fmt.Errorf("bootstrap:\n%w", err)
		}
	}

	if err := g.replicaSrv.Start(); err != nil {
		return fmt.Errorf("start replica server:\n%w", err)
	}

	if err := g.apiServer.Start(); err != nil {
		return fmt.Errorf("start http server:\n%w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	if err := g.apiServer.Stop(); err != nil {
		logger.Warn("http shutdown error", "error", err)
	}

	g.replicaSrv.Stop()

	return nil
}

// mirror fetches a snapshot from the configured primary gateway.
func (g *Gateway) mirror() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := replica.Fetch(ctx, g.db, g.cfg.ReplicaOf)
	if err != nil {
		return err
	}

	logger.Info("mirrored primary", "primary", g.cfg.ReplicaOf, "entries", n)

	return nil
}

// bootstrap writes the initial access flags named on the command line.
func (g *Gateway) bootstrap() error {
	txn := g.db.Begin()
	defer txn.Discard()

	if g.cfg.ManagerAddress != "" {
		manager, err := params.ParseAddress(g.cfg.ManagerAddress)
		if err != nil {
			return fmt.Errorf("manager address:\n%w", err)
		}

		if err := g.vaultParams.SetManager(txn, manager, true); err != nil {
			return fmt.Errorf("grant manager:\n%w", err)
		}

		logger.Info("bootstrap manager granted", "address", manager)
	}

	if g.cfg.VaultAddress != "" {
		vaultAddr, err := params.ParseAddress(g.cfg.VaultAddress)
		if err != nil {
			return fmt.Errorf("vault address:\n%w", err)
		}

		if err := g.vaultParams.SetVault(txn, vaultAddr); err != nil {
			return fmt.Errorf("record vault:\n%w", err)
		}

		logger.Info("bootstrap vault recorded", "address", vaultAddr)
	}

	return txn.Commit()
}
