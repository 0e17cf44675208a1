package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// EventRepo implements storage.EventRepository using PostgreSQL.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a new PostgreSQL event repository.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

type eventRow struct {
	BlockHeight uint64       `db:"block_height"`
	TxHash      string       `db:"tx_hash"`
	EventIndex  uint32       `db:"event_index"`
	EventType   string       `db:"event_type"`
	ItemIndex   uint64       `db:"item_index"`
	Payload     []byte       `db:"payload"`
	EmittedAt   sql.NullTime `db:"emitted_at"`
}

// InsertBlockEvents stores a block's events and advances the checkpoint in
// one transaction. ON CONFLICT DO NOTHING keeps re-processing idempotent.
func (r *EventRepo) InsertBlockEvents(ctx context.Context, height uint64, events []domain.ContractEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO auction_events
				(block_height, tx_hash, event_index, event_type, item_index, payload, emitted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (block_height, tx_hash, event_index) DO NOTHING`,
			ev.BlockHeight, string(ev.TxHash), ev.EventIndex, string(ev.Type),
			ev.ItemIndex, ev.Payload, ev.EmittedAt,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO indexer_checkpoint (id, block_height, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE
			SET block_height = EXCLUDED.block_height, updated_at = now()
			WHERE indexer_checkpoint.block_height < EXCLUDED.block_height`,
		height,
	)
	if err != nil {
		return fmt.Errorf("update checkpoint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Checkpoint returns the last indexed block height, or 0 if none.
func (r *EventRepo) Checkpoint(ctx context.Context) (uint64, error) {
	var height uint64
	err := r.db.GetContext(ctx, &height, `SELECT block_height FROM indexer_checkpoint WHERE id = 1`)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get checkpoint: %w", err)
	}
	return height, nil
}

// ListItemEvents returns the stored events of one item, oldest first.
func (r *EventRepo) ListItemEvents(ctx context.Context, itemIndex uint64, limit, offset int) ([]domain.ContractEvent, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT block_height, tx_hash, event_index, event_type, item_index, payload, emitted_at
		FROM auction_events
		WHERE item_index = $1
		ORDER BY block_height, tx_hash, event_index
		LIMIT $2 OFFSET $3`,
		itemIndex, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list item events: %w", err)
	}

	events := make([]domain.ContractEvent, 0, len(rows))
	for _, row := range rows {
		ev := domain.ContractEvent{
			BlockHeight: row.BlockHeight,
			TxHash:      domain.TransactionHash(row.TxHash),
			EventIndex:  row.EventIndex,
			Type:        domain.EventType(row.EventType),
			ItemIndex:   row.ItemIndex,
			Payload:     row.Payload,
		}
		if row.EmittedAt.Valid {
			ev.EmittedAt = row.EmittedAt.Time
		}
		events = append(events, ev)
	}
	return events, nil
}
