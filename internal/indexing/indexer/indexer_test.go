package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/infra/storage/memory"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeNode struct {
	finalized uint64
	events    map[uint64][]domain.ContractEvent
	failAt    uint64
	calls     []uint64
}

func (f *fakeNode) GetConsensusInfo(ctx context.Context) (*node.ConsensusInfo, error) {
	return &node.ConsensusInfo{FinalizedHeight: f.finalized, FinalizedTime: time.Now()}, nil
}

func (f *fakeNode) GetBlockEvents(ctx context.Context, height uint64) ([]domain.ContractEvent, error) {
	f.calls = append(f.calls, height)
	if f.failAt != 0 && height == f.failAt {
		return nil, errors.New("node unavailable")
	}
	return f.events[height], nil
}

var auctionContract = domain.ContractAddress{Index: 7399}

func event(height uint64, tx string, idx uint32, item uint64) domain.ContractEvent {
	return domain.ContractEvent{
		Contract:    auctionContract,
		Type:        domain.EventBidPlaced,
		BlockHeight: height,
		TxHash:      domain.TransactionHash(tx),
		EventIndex:  idx,
		ItemIndex:   item,
		EmittedAt:   time.Now(),
	}
}

func newTestIndexer(n *fakeNode, repo *memory.EventRepo) *Indexer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{Contract: auctionContract}, n, repo, logger)
}

// =============================================================================
// Tests
// =============================================================================

func TestScan_StoresMatchingEvents(t *testing.T) {
	n := &fakeNode{
		finalized: 3,
		events: map[uint64][]domain.ContractEvent{
			2: {event(2, "tx-a", 0, 1)},
			3: {
				event(3, "tx-b", 0, 1),
				{Contract: domain.ContractAddress{Index: 999}, BlockHeight: 3, TxHash: "tx-c"},
			},
		},
	}
	repo := memory.NewEventRepo()

	if err := newTestIndexer(n, repo).Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	checkpoint, _ := repo.Checkpoint(context.Background())
	if checkpoint != 3 {
		t.Errorf("Expected checkpoint 3, got %d", checkpoint)
	}
	stored, _ := repo.ListItemEvents(context.Background(), 1, 0, 0)
	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored events, got %d", len(stored))
	}
	if stored[0].TxHash != "tx-a" || stored[1].TxHash != "tx-b" {
		t.Errorf("Expected ordered events tx-a, tx-b, got %s, %s", stored[0].TxHash, stored[1].TxHash)
	}
}

func TestScan_ResumesFromCheckpoint(t *testing.T) {
	n := &fakeNode{finalized: 5}
	repo := memory.NewEventRepo()
	if err := repo.InsertBlockEvents(context.Background(), 3, nil); err != nil {
		t.Fatalf("InsertBlockEvents failed: %v", err)
	}

	if err := newTestIndexer(n, repo).Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(n.calls) != 2 || n.calls[0] != 4 || n.calls[1] != 5 {
		t.Errorf("Expected blocks 4 and 5 fetched, got %v", n.calls)
	}
}

func TestScan_ReingestIsIdempotent(t *testing.T) {
	n := &fakeNode{
		finalized: 2,
		events: map[uint64][]domain.ContractEvent{
			2: {event(2, "tx-a", 0, 7)},
		},
	}
	repo := memory.NewEventRepo()
	ix := newTestIndexer(n, repo)

	if err := ix.Scan(context.Background()); err != nil {
		t.Fatalf("First scan failed: %v", err)
	}
	// Simulate a crash before the checkpoint was durable: re-ingest the
	// same block and expect no duplicate rows.
	if err := repo.InsertBlockEvents(context.Background(), 2, n.events[2]); err != nil {
		t.Fatalf("Re-insert failed: %v", err)
	}

	stored, _ := repo.ListItemEvents(context.Background(), 7, 0, 0)
	if len(stored) != 1 {
		t.Errorf("Expected 1 event after re-ingest, got %d", len(stored))
	}
}

func TestScan_StopsAtFailedBlock(t *testing.T) {
	n := &fakeNode{
		finalized: 4,
		failAt:    3,
		events: map[uint64][]domain.ContractEvent{
			2: {event(2, "tx-a", 0, 1)},
			4: {event(4, "tx-d", 0, 1)},
		},
	}
	repo := memory.NewEventRepo()

	err := newTestIndexer(n, repo).Scan(context.Background())
	if err == nil {
		t.Fatal("Expected error from failing block")
	}

	// Blocks before the failure are committed, nothing after it.
	checkpoint, _ := repo.Checkpoint(context.Background())
	if checkpoint != 2 {
		t.Errorf("Expected checkpoint 2, got %d", checkpoint)
	}
}

func TestScan_RespectsBatchSize(t *testing.T) {
	n := &fakeNode{finalized: 100}
	repo := memory.NewEventRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := New(Config{Contract: auctionContract, BatchSize: 10}, n, repo, logger)

	if err := ix.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(n.calls) != 10 {
		t.Errorf("Expected 10 blocks per tick, got %d", len(n.calls))
	}
	checkpoint, _ := repo.Checkpoint(context.Background())
	if checkpoint != 10 {
		t.Errorf("Expected checkpoint 10, got %d", checkpoint)
	}
}

func TestScan_StartHeightOnEmptyStore(t *testing.T) {
	n := &fakeNode{finalized: 55}
	repo := memory.NewEventRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := New(Config{Contract: auctionContract, StartHeight: 50}, n, repo, logger)

	if err := ix.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if n.calls[0] != 50 {
		t.Errorf("Expected first scanned block 50, got %d", n.calls[0])
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	n := &fakeNode{finalized: 0}
	repo := memory.NewEventRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := New(Config{Contract: auctionContract, ScanInterval: 5 * time.Millisecond}, n, repo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ix.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
