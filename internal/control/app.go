// Package control wires the backend services together: verifier, sponsor,
// event indexer and the health/metrics server, with the storage and cache
// backends selected by configuration.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/contract"
	"github.com/BukiOffor/concordium-dapp-examples/internal/core/config"
	"github.com/BukiOffor/concordium-dapp-examples/internal/core/worker"
	"github.com/BukiOffor/concordium-dapp-examples/internal/indexing/health"
	"github.com/BukiOffor/concordium-dapp-examples/internal/indexing/indexer"
	redisclient "github.com/BukiOffor/concordium-dapp-examples/internal/infra/redis"
	"github.com/BukiOffor/concordium-dapp-examples/internal/infra/storage"
	"github.com/BukiOffor/concordium-dapp-examples/internal/infra/storage/memory"
	"github.com/BukiOffor/concordium-dapp-examples/internal/infra/storage/postgres"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
	"github.com/BukiOffor/concordium-dapp-examples/internal/sponsor"
	"github.com/BukiOffor/concordium-dapp-examples/internal/verifier/server"
	"github.com/BukiOffor/concordium-dapp-examples/internal/wallet"
)

// App is the backend daemon: it owns the shared clients and the service
// lifecycles.
type App struct {
	cfg          *config.AppConfig
	nodeClient   *node.Client
	db           *postgres.DB
	redisClient  *redisclient.Client
	apiServer    *http.Server
	healthServer *health.Server
	indexer      *indexer.Indexer
	pruner       *worker.Pruner
	sponsorKey   *wallet.Wallet
	log          *slog.Logger
}

// NewApp creates the daemon with all dependencies initialized. When no
// database is configured the repositories fall back to memory; when no
// redis is configured the challenge and session stores do.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	app := &App{cfg: cfg, log: slog.Default()}

	nodeClient, err := node.NewClient(ctx, node.Config{
		Endpoint:    cfg.Node.Endpoint,
		DialTimeout: cfg.Node.DialTimeout,
		CallTimeout: cfg.Node.CallTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init node client: %w", err)
	}
	app.nodeClient = nodeClient

	// Storage
	var eventRepo storage.EventRepository
	var authRepo storage.AuthRepository
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			return nil, err
		}
		app.db = db
		eventRepo = postgres.NewEventRepo(db)
		authRepo = postgres.NewAuthRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		eventRepo = memory.NewEventRepo()
		authRepo = memory.NewAuthRepo()
		slog.Info("Using Memory storage")
	}

	// Challenge/session stores and the sponsor rate limiter
	var challenges server.ChallengeStore
	var sessions server.SessionStore
	var limiter sponsor.RateLimiter
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.redisClient = rc
		challenges = rc
		sessions = rc.SessionStore()
		limiter = rc.NewRateLimiter(cfg.Sponsor.DailyLimit)
		slog.Info("Using Redis stores")
	} else {
		challengeStore := server.NewMemoryChallengeStore()
		sessionStore := server.NewMemorySessionStore()
		challenges = challengeStore
		sessions = sessionStore
		app.pruner = worker.NewPruner(time.Minute, map[string]worker.Sweepable{
			"challenges": challengeStore,
			"sessions":   sessionStore,
		})
		slog.Warn("Redis not configured, using in-memory stores without sponsor rate limiting")
	}

	mux := http.NewServeMux()

	statement, err := cfg.Verifier.DomainStatement()
	if err != nil {
		return nil, fmt.Errorf("invalid verifier statement: %w", err)
	}
	verifier := server.New(server.Config{
		Statement:    statement,
		ChallengeTTL: cfg.Verifier.ChallengeTTL,
		SessionTTL:   cfg.Verifier.SessionTTL,
	}, nodeClient, challenges, sessions, authRepo)
	verifier.Register(mux)

	if cfg.Sponsor.Enabled {
		sponsorWallet := wallet.New(cfg.Sponsor.KeystorePath, cfg.Sponsor.Passphrase)
		if _, err := sponsorWallet.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to open sponsor keystore: %w", err)
		}
		app.sponsorKey = sponsorWallet

		auction := contract.NewClient(nodeClient, cfg.Contract.Auction)
		svc, err := sponsor.New(ctx, auction, nodeClient, nodeClient, sponsorWallet, limiter)
		if err != nil {
			return nil, err
		}
		sponsor.NewHandler(svc).Register(mux)
		slog.Info("Sponsor service enabled")
	}

	app.apiServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	if cfg.Indexer.Enabled {
		app.indexer = indexer.New(indexer.Config{
			Contract:     cfg.Contract.Auction,
			ScanInterval: cfg.Indexer.ScanInterval,
			StartHeight:  cfg.Indexer.StartHeight,
		}, nodeClient, eventRepo, app.log)
	}

	app.healthServer = health.NewServer(cfg.Server.HealthPort)
	app.healthServer.Register("node", func(ctx context.Context) error {
		_, err := nodeClient.GetConsensusInfo(ctx)
		return err
	})
	if app.db != nil {
		app.healthServer.Register("database", func(ctx context.Context) error {
			return app.db.PingContext(ctx)
		})
	}

	return app, nil
}

// Start starts the app and all its components.
func (a *App) Start(ctx context.Context) error {
	go func() {
		a.log.Info("API server listening", "addr", a.apiServer.Addr)
		if err := a.apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("API server failed", "error", err)
		}
	}()

	go func() {
		if err := a.healthServer.Start(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	if a.indexer != nil {
		go func() {
			if err := a.indexer.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("Indexer failed", "error", err)
			}
		}()
	}

	if a.pruner != nil {
		go a.pruner.Start(ctx)
	}

	return nil
}

// Stop stops the app gracefully.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping...")

	if err := a.apiServer.Shutdown(ctx); err != nil {
		a.log.Warn("Failed to shut down API server", "error", err)
	}

	if a.sponsorKey != nil {
		a.sponsorKey.Disconnect()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
	if err := a.nodeClient.Close(); err != nil {
		a.log.Warn("Failed to close node connection", "error", err)
	}

	return a.healthServer.Stop(ctx)
}
