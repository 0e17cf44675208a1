// Package cli implements the auctioneer command line client.
package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/config"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
	"github.com/BukiOffor/concordium-dapp-examples/internal/wallet"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "auctioneer",
	Short: "Auction dApp client",
	Long: `Auctioneer drives the on-chain auction: wallet connect and verifier
authorization, listing items, bidding (directly or sponsored) and state views.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig loads .env and the YAML config and sets up logging.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg
}

func dialNode(ctx context.Context, cfg *config.AppConfig) *node.Client {
	client, err := node.NewClient(ctx, node.Config{
		Endpoint:    cfg.Node.Endpoint,
		DialTimeout: cfg.Node.DialTimeout,
		CallTimeout: cfg.Node.CallTimeout,
	})
	if err != nil {
		slog.Error("Failed to connect to node", "endpoint", cfg.Node.Endpoint, "error", err)
		os.Exit(1)
	}
	return client
}

// connectedWallet opens the configured keystore and connects it.
func connectedWallet(ctx context.Context, cfg *config.AppConfig) *wallet.Wallet {
	w := wallet.New(cfg.Wallet.KeystorePath, cfg.Wallet.Passphrase)
	if _, err := w.Connect(ctx); err != nil {
		slog.Error("Failed to connect wallet", "keystore", cfg.Wallet.KeystorePath, "error", err)
		os.Exit(1)
	}
	return w
}
