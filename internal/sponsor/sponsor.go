// Package sponsor implements the sponsored-transaction service: users sign
// a bid permit with their own key, the service verifies it, pays the
// transaction costs and submits the bid from the sponsor account.
package sponsor

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/contract"
	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
	"github.com/BukiOffor/concordium-dapp-examples/internal/wallet"
)

var (
	// ErrRateLimited is returned when a signer exceeded the daily
	// sponsored-transaction allowance.
	ErrRateLimited = errors.New("sponsor: rate limit exceeded")
	// ErrInvalidSignature is returned for permits whose signature does not
	// verify against the signer's registered key.
	ErrInvalidSignature = errors.New("sponsor: invalid permit signature")
	// ErrExpiredPermit is returned for permits past their expiry.
	ErrExpiredPermit = errors.New("sponsor: permit expired")
)

// Permit is the message a user signs to have a bid sponsored.
type Permit struct {
	Contract domain.ContractAddress `json:"contract"`
	Params   domain.BidParams       `json:"params"`
	Nonce    uint64                 `json:"nonce"` // permit nonce, not the account nonce
	Expiry   time.Time              `json:"expiry"`
}

// SignedPermit is a permit with its signer and signature.
type SignedPermit struct {
	Signer    domain.AccountAddress `json:"signer"`
	Permit    Permit                `json:"permit"`
	Signature []byte                `json:"signature"`
}

// PermitPayload returns the canonical bytes the permit signature covers.
func PermitPayload(p Permit) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("sponsor: encode permit: %w", err)
	}
	return data, nil
}

// RateLimiter limits sponsored submissions per signer.
type RateLimiter interface {
	Allow(ctx context.Context, account domain.AccountAddress) (bool, error)
}

// AccountLookup resolves a signer's registered public key.
type AccountLookup interface {
	GetAccountInfo(ctx context.Context, address domain.AccountAddress) (*node.AccountInfo, error)
}

// NodeSubmitter is the node surface used for sponsored submissions.
type NodeSubmitter interface {
	SendBlockItem(ctx context.Context, req node.SubmitRequest) (domain.TransactionHash, error)
	GetNextNonce(ctx context.Context, address domain.AccountAddress) (domain.Nonce, error)
}

// Service verifies permits and submits sponsored bids.
type Service struct {
	auction  *contract.Client
	nodeAPI  NodeSubmitter
	accounts AccountLookup
	signer   contract.Signer // the sponsor wallet
	limiter  RateLimiter
	log      *slog.Logger

	// The sponsor account nonce is read once at startup and advanced
	// locally; the mutex serializes concurrent submissions.
	mu    sync.Mutex
	nonce domain.Nonce
}

// New creates the sponsor service and acquires the sponsor account nonce.
func New(ctx context.Context, auction *contract.Client, nodeAPI NodeSubmitter, accounts AccountLookup, signer contract.Signer, limiter RateLimiter) (*Service, error) {
	account, ok := signer.Account()
	if !ok {
		return nil, errors.New("sponsor: wallet not connected")
	}
	nonce, err := nodeAPI.GetNextNonce(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("sponsor: acquire nonce: %w", err)
	}
	return &Service{
		auction:  auction,
		nodeAPI:  nodeAPI,
		accounts: accounts,
		signer:   signer,
		limiter:  limiter,
		log:      slog.With("component", "sponsor"),
		nonce:    nonce,
	}, nil
}

// SubmitBid verifies a signed permit and submits the bid from the sponsor
// account, returning the transaction hash.
func (s *Service) SubmitBid(ctx context.Context, signed SignedPermit) (domain.TransactionHash, error) {
	if err := s.verifyPermit(ctx, signed); err != nil {
		return "", err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, signed.Signer)
		if err != nil {
			return "", fmt.Errorf("sponsor: rate limiter: %w", err)
		}
		if !allowed {
			return "", ErrRateLimited
		}
	}

	// Dry-run with the user as invoker so contract-level checks (bid
	// amount, auction window) run against the right account.
	result, err := s.auction.DryRun(ctx, signed.Signer, contract.EntrypointBid, signed.Permit.Params)
	if err != nil {
		return "", err
	}
	if err := contract.CheckOutcome(contract.EntrypointBid, result); err != nil {
		return "", err
	}

	sponsorAccount, _ := s.signer.Account()
	parameter, err := json.Marshal(signed)
	if err != nil {
		return "", fmt.Errorf("sponsor: encode parameter: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := node.SubmitRequest{
		Sender:     sponsorAccount,
		Nonce:      s.nonce,
		Contract:   s.auction.Address(),
		Entrypoint: contract.EntrypointBid,
		Parameter:  parameter,
		Energy:     result.UsedEnergy + contract.EnergyEpsilon,
		Expiry:     time.Now().Add(10 * time.Minute),
	}
	payload, err := contract.SigningPayload(req)
	if err != nil {
		return "", err
	}
	req.Signature, err = s.signer.SignMessage(payload)
	if err != nil {
		return "", err
	}

	hash, err := s.nodeAPI.SendBlockItem(ctx, req)
	if err != nil {
		return "", fmt.Errorf("sponsor: submit: %w", err)
	}
	s.nonce++

	s.log.Info("Submitted sponsored bid", "signer", signed.Signer, "item", signed.Permit.Params.ItemIndex, "hash", hash)
	return hash, nil
}

// verifyPermit checks expiry and the signature against the signer's
// registered public key.
func (s *Service) verifyPermit(ctx context.Context, signed SignedPermit) error {
	if !signed.Permit.Expiry.IsZero() && time.Now().After(signed.Permit.Expiry) {
		return ErrExpiredPermit
	}

	info, err := s.accounts.GetAccountInfo(ctx, signed.Signer)
	if err != nil {
		return fmt.Errorf("sponsor: account lookup: %w", err)
	}
	pub, err := hex.DecodeString(info.PublicKey)
	if err != nil {
		return fmt.Errorf("sponsor: account %s has malformed public key: %w", signed.Signer, err)
	}

	payload, err := PermitPayload(signed.Permit)
	if err != nil {
		return err
	}
	valid, err := wallet.VerifyMessage(pub, signed.Signer, payload, signed.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !valid {
		return ErrInvalidSignature
	}
	return nil
}
