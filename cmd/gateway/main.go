package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/Arctek/core/internal/logger"
)

func main() {
	logger.Init()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point with error handling.
func run() error {
	cfg := parseFlags()

	var err error
	cfg.PrivateKey, err = loadOrGenerateKey(cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("load key:\n%w", err)
	}

	gateway, err := NewGateway(cfg)
	if err != nil {
		return fmt.Errorf("create gateway:\n%w", err)
	}

	printStartupInfo(cfg)

	return gateway.Run()
}

// printStartupInfo displays gateway configuration at startup.
func printStartupInfo(cfg *Config) {
	pubKey := cfg.PrivateKey.Public().(ed25519.PublicKey)

	logger.Info("starting gateway",
		"pubkey", hex.EncodeToString(pubKey),
		"http", cfg.HTTPAddress,
		"quic", cfg.QUICAddress,
		"data", cfg.DataPath,
		"bootstrap", cfg.Bootstrap,
	)

	if cfg.ReplicaOf != "" {
		logger.Info("replica configuration", "primary", cfg.ReplicaOf)
	}
}
