package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// AuthRepo implements storage.AuthRepository using PostgreSQL.
type AuthRepo struct {
	db *DB
}

// NewAuthRepo creates a new PostgreSQL authorization repository.
func NewAuthRepo(db *DB) *AuthRepo {
	return &AuthRepo{db: db}
}

// RecordAuthorization appends one row to the authorization audit trail.
func (r *AuthRepo) RecordAuthorization(ctx context.Context, account domain.AccountAddress, issuedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO authorizations (account, issued_at) VALUES ($1, $2)`,
		string(account), issuedAt,
	)
	if err != nil {
		return fmt.Errorf("record authorization: %w", err)
	}
	return nil
}

// CountAuthorizations returns how many sessions an account has opened.
func (r *AuthRepo) CountAuthorizations(ctx context.Context, account domain.AccountAddress) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM authorizations WHERE account = $1`,
		string(account),
	)
	if err != nil {
		return 0, fmt.Errorf("count authorizations: %w", err)
	}
	return count, nil
}
