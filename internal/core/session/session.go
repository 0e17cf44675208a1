// Package session orchestrates the connect -> challenge -> prove ->
// authorize handshake and holds the resulting account and token for the
// lifetime of the application session. Nothing is persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// ErrNoAccount is returned when authorization is attempted without a
// connected account.
var ErrNoAccount = errors.New("session: no account connected")

// WalletConnector is the wallet surface the session drives.
type WalletConnector interface {
	Connect(ctx context.Context) (domain.AccountAddress, error)
	Disconnect()
	RequestIDProof(ctx context.Context, account domain.AccountAddress, statement domain.Statement, challenge domain.Challenge) (*domain.IDProof, error)
}

// VerifierAPI is the verifier surface the session drives.
type VerifierAPI interface {
	GetStatement(ctx context.Context) (domain.Statement, error)
	GetChallenge(ctx context.Context, account domain.AccountAddress) (domain.Challenge, error)
	Authorize(ctx context.Context, proof *domain.IDProof) (domain.AuthToken, error)
}

// Session holds the connected account and auth token.
type Session struct {
	wallet   WalletConnector
	verifier VerifierAPI

	mu      sync.Mutex
	account domain.AccountAddress
	token   domain.AuthToken
}

// New creates an unconnected session.
func New(wallet WalletConnector, verifier VerifierAPI) *Session {
	return &Session{wallet: wallet, verifier: verifier}
}

// Connect connects the wallet and records the account. A wallet rejection
// is propagated unchanged.
func (s *Session) Connect(ctx context.Context) (domain.AccountAddress, error) {
	account, err := s.wallet.Connect(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	s.token = ""
	return account, nil
}

// Disconnect drops the account and token and disconnects the wallet.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.account = ""
	s.token = ""
	s.mu.Unlock()
	s.wallet.Disconnect()
}

// Authorize runs the challenge/proof handshake for the connected account.
// It fails fast with ErrNoAccount before touching the network if nothing
// is connected. Any step failing surfaces as one wrapped error.
func (s *Session) Authorize(ctx context.Context) (domain.AuthToken, error) {
	s.mu.Lock()
	account := s.account
	s.mu.Unlock()

	if account.IsZero() {
		return "", ErrNoAccount
	}

	statement, err := s.verifier.GetStatement(ctx)
	if err != nil {
		return "", fmt.Errorf("authorize: get statement: %w", err)
	}
	challenge, err := s.verifier.GetChallenge(ctx, account)
	if err != nil {
		return "", fmt.Errorf("authorize: get challenge: %w", err)
	}
	proof, err := s.wallet.RequestIDProof(ctx, account, statement, challenge)
	if err != nil {
		return "", fmt.Errorf("authorize: request proof: %w", err)
	}
	token, err := s.verifier.Authorize(ctx, proof)
	if err != nil {
		return "", fmt.Errorf("authorize: exchange proof: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

// Account returns the connected account, if any.
func (s *Session) Account() (domain.AccountAddress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, !s.account.IsZero()
}

// Token returns the auth token, if authorized.
func (s *Session) Token() (domain.AuthToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}
