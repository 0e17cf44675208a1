// Package memory provides in-memory repository implementations used in
// tests and when the service runs without a database configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

type eventKey struct {
	blockHeight uint64
	txHash      domain.TransactionHash
	eventIndex  uint32
}

// EventRepo is an in-memory storage.EventRepository.
type EventRepo struct {
	mu         sync.RWMutex
	events     map[eventKey]domain.ContractEvent
	checkpoint uint64
}

// NewEventRepo creates a new in-memory event repository.
func NewEventRepo() *EventRepo {
	return &EventRepo{events: make(map[eventKey]domain.ContractEvent)}
}

// InsertBlockEvents stores the events of one block and advances the
// checkpoint. Duplicate events are ignored.
func (r *EventRepo) InsertBlockEvents(ctx context.Context, height uint64, events []domain.ContractEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range events {
		key := eventKey{ev.BlockHeight, ev.TxHash, ev.EventIndex}
		if _, ok := r.events[key]; ok {
			continue
		}
		r.events[key] = ev
	}
	if height > r.checkpoint {
		r.checkpoint = height
	}
	return nil
}

// Checkpoint returns the last indexed block height.
func (r *EventRepo) Checkpoint(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checkpoint, nil
}

// ListItemEvents returns the stored events of one item, oldest first.
func (r *EventRepo) ListItemEvents(ctx context.Context, itemIndex uint64, limit, offset int) ([]domain.ContractEvent, error) {
	r.mu.RLock()
	var events []domain.ContractEvent
	for _, ev := range r.events {
		if ev.ItemIndex == itemIndex {
			events = append(events, ev)
		}
	}
	r.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.BlockHeight != b.BlockHeight {
			return a.BlockHeight < b.BlockHeight
		}
		if a.TxHash != b.TxHash {
			return a.TxHash < b.TxHash
		}
		return a.EventIndex < b.EventIndex
	})

	if offset >= len(events) {
		return nil, nil
	}
	events = events[offset:]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

type authRecord struct {
	account  domain.AccountAddress
	issuedAt time.Time
}

// AuthRepo is an in-memory storage.AuthRepository.
type AuthRepo struct {
	mu      sync.RWMutex
	records []authRecord
}

// NewAuthRepo creates a new in-memory authorization repository.
func NewAuthRepo() *AuthRepo {
	return &AuthRepo{}
}

// RecordAuthorization appends one record to the audit trail.
func (r *AuthRepo) RecordAuthorization(ctx context.Context, account domain.AccountAddress, issuedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, authRecord{account: account, issuedAt: issuedAt})
	return nil
}

// CountAuthorizations returns how many sessions an account has opened.
func (r *AuthRepo) CountAuthorizations(ctx context.Context, account domain.AccountAddress) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, rec := range r.records {
		if rec.account == account {
			count++
		}
	}
	return count, nil
}
