// Package indexer scans finalized blocks for auction contract events and
// stores them through the event repository. It resumes from the stored
// checkpoint, so restarts and crashes never drop or duplicate events.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/indexing/metrics"
	"github.com/BukiOffor/concordium-dapp-examples/internal/infra/storage"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
)

// NodeClient is the slice of the node API the indexer needs.
type NodeClient interface {
	GetConsensusInfo(ctx context.Context) (*node.ConsensusInfo, error)
	GetBlockEvents(ctx context.Context, height uint64) ([]domain.ContractEvent, error)
}

// Config holds indexer settings.
type Config struct {
	Contract     domain.ContractAddress
	ScanInterval time.Duration
	StartHeight  uint64 // first block to scan when no checkpoint exists
	BatchSize    int    // max blocks per tick, 0 means default
}

// Indexer polls the node for finalized blocks and persists auction events.
type Indexer struct {
	cfg    Config
	node   NodeClient
	events storage.EventRepository
	logger *slog.Logger
}

const defaultBatchSize = 64

// New creates a new indexer.
func New(cfg Config, nodeClient NodeClient, events storage.EventRepository, logger *slog.Logger) *Indexer {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Indexer{
		cfg:    cfg,
		node:   nodeClient,
		events: events,
		logger: logger.With("component", "indexer"),
	}
}

// Run scans in a loop until the context is cancelled. Scan errors are
// logged and retried on the next tick.
func (ix *Indexer) Run(ctx context.Context) error {
	ix.logger.Info("Starting indexer",
		"contract", fmt.Sprintf("<%d,%d>", ix.cfg.Contract.Index, ix.cfg.Contract.Subindex),
		"interval", ix.cfg.ScanInterval)

	ticker := time.NewTicker(ix.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		if err := ix.Scan(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ix.logger.Error("Scan failed", "error", err)
		}

		select {
		case <-ctx.Done():
			ix.logger.Info("Indexer stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Scan processes all finalized blocks past the checkpoint, up to the batch
// size. It is exported so one-shot catch-up runs can drive it directly.
func (ix *Indexer) Scan(ctx context.Context) error {
	start := time.Now()
	info, err := ix.node.GetConsensusInfo(ctx)
	metrics.NodeCallLatency.WithLabelValues("GetConsensusInfo").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NodeErrorsTotal.WithLabelValues("GetConsensusInfo").Inc()
		return fmt.Errorf("get consensus info: %w", err)
	}
	metrics.NodeCallsTotal.WithLabelValues("GetConsensusInfo").Inc()
	metrics.ChainFinalizedHeight.Set(float64(info.FinalizedHeight))

	checkpoint, err := ix.events.Checkpoint(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	next := checkpoint + 1
	if checkpoint == 0 && ix.cfg.StartHeight > 0 {
		next = ix.cfg.StartHeight
	}
	if next > info.FinalizedHeight {
		return nil
	}

	end := info.FinalizedHeight
	if max := next + uint64(ix.cfg.BatchSize) - 1; end > max {
		end = max
	}

	for height := next; height <= end; height++ {
		if err := ix.processBlock(ctx, height); err != nil {
			return fmt.Errorf("block %d: %w", height, err)
		}
	}
	return nil
}

// processBlock fetches one block's events, keeps those of the auction
// contract and commits them with the checkpoint in one transaction. Blocks
// without matching events still advance the checkpoint.
func (ix *Indexer) processBlock(ctx context.Context, height uint64) error {
	start := time.Now()
	all, err := ix.node.GetBlockEvents(ctx, height)
	metrics.NodeCallLatency.WithLabelValues("GetBlockEvents").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NodeErrorsTotal.WithLabelValues("GetBlockEvents").Inc()
		return fmt.Errorf("get block events: %w", err)
	}
	metrics.NodeCallsTotal.WithLabelValues("GetBlockEvents").Inc()

	var matched []domain.ContractEvent
	for _, ev := range all {
		if ev.Contract == ix.cfg.Contract {
			matched = append(matched, ev)
		}
	}

	if err := ix.events.InsertBlockEvents(ctx, height, matched); err != nil {
		return fmt.Errorf("store events: %w", err)
	}

	metrics.BlocksProcessed.Inc()
	metrics.IndexerCheckpoint.Set(float64(height))
	for _, ev := range matched {
		metrics.EventsIndexed.WithLabelValues(string(ev.Type)).Inc()
	}
	if len(matched) > 0 {
		ix.logger.Info("Indexed block", "height", height, "events", len(matched))
	}
	return nil
}
