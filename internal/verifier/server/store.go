package server

import (
	"context"
	"sync"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// ChallengeStore holds issued challenges until they are consumed or expire.
type ChallengeStore interface {
	// Put stores a challenge for an account with a TTL.
	Put(ctx context.Context, challenge domain.Challenge, account domain.AccountAddress, ttl time.Duration) error

	// Take removes and returns the account a challenge was issued for.
	// A challenge can be taken at most once.
	Take(ctx context.Context, challenge domain.Challenge) (domain.AccountAddress, bool, error)
}

// SessionStore holds issued auth tokens until they expire.
type SessionStore interface {
	Put(ctx context.Context, token domain.AuthToken, account domain.AccountAddress, ttl time.Duration) error
	Get(ctx context.Context, token domain.AuthToken) (domain.AccountAddress, bool, error)
}

// memoryEntry is a stored value with its expiry.
type memoryEntry struct {
	account   domain.AccountAddress
	expiresAt time.Time
}

// MemoryChallengeStore is an in-memory ChallengeStore for tests and
// single-instance deployments without redis.
type MemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[domain.Challenge]memoryEntry
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{entries: make(map[domain.Challenge]memoryEntry)}
}

func (s *MemoryChallengeStore) Put(ctx context.Context, challenge domain.Challenge, account domain.AccountAddress, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[challenge] = memoryEntry{account: account, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryChallengeStore) Take(ctx context.Context, challenge domain.Challenge) (domain.AccountAddress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[challenge]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, challenge)
	if time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.account, true, nil
}

// Sweep drops expired entries. Challenges that are never taken would
// otherwise accumulate.
func (s *MemoryChallengeStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for challenge, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, challenge)
			removed++
		}
	}
	return removed
}

// MemorySessionStore is an in-memory SessionStore.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[domain.AuthToken]memoryEntry
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[domain.AuthToken]memoryEntry)}
}

func (s *MemorySessionStore) Put(ctx context.Context, token domain.AuthToken, account domain.AccountAddress, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{account: account, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, token domain.AuthToken) (domain.AccountAddress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.account, true, nil
}

// Sweep drops expired sessions.
func (s *MemorySessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}
