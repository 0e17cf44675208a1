// Package storage defines the repository interfaces shared by the
// postgres and in-memory implementations.
package storage

import (
	"context"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// EventRepository stores auction contract events extracted from finalized
// blocks. Events are keyed by (block_height, tx_hash, event_index) and
// inserts are idempotent: re-processing a block must not duplicate rows.
type EventRepository interface {
	// InsertBlockEvents stores the events of one block and advances the
	// indexer checkpoint to that height in the same transaction.
	InsertBlockEvents(ctx context.Context, height uint64, events []domain.ContractEvent) error

	// Checkpoint returns the last indexed block height, or 0 when the
	// indexer has never run.
	Checkpoint(ctx context.Context) (uint64, error)

	// ListItemEvents returns the stored events of one auctioned item,
	// oldest first.
	ListItemEvents(ctx context.Context, itemIndex uint64, limit, offset int) ([]domain.ContractEvent, error)
}

// AuthRepository keeps an audit trail of successful authorizations.
type AuthRepository interface {
	RecordAuthorization(ctx context.Context, account domain.AccountAddress, issuedAt time.Time) error
	CountAuthorizations(ctx context.Context, account domain.AccountAddress) (int, error)
}
