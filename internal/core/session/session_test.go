package session

import (
	"context"
	"errors"
	"testing"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeWallet struct {
	account    domain.AccountAddress
	connectErr error
	proofErr   error
	proofCalls int
}

func (f *fakeWallet) Connect(ctx context.Context) (domain.AccountAddress, error) {
	if f.connectErr != nil {
		return "", f.connectErr
	}
	return f.account, nil
}

func (f *fakeWallet) Disconnect() {}

func (f *fakeWallet) RequestIDProof(ctx context.Context, account domain.AccountAddress, statement domain.Statement, challenge domain.Challenge) (*domain.IDProof, error) {
	f.proofCalls++
	if f.proofErr != nil {
		return nil, f.proofErr
	}
	return &domain.IDProof{Account: account, Challenge: challenge}, nil
}

type fakeVerifier struct {
	calls        int
	authorizeErr error
	token        domain.AuthToken
}

func (f *fakeVerifier) GetStatement(ctx context.Context) (domain.Statement, error) {
	f.calls++
	return domain.Statement{{Kind: domain.StatementReveal, Tag: domain.AttributeNationality}}, nil
}

func (f *fakeVerifier) GetChallenge(ctx context.Context, account domain.AccountAddress) (domain.Challenge, error) {
	f.calls++
	return "00ff", nil
}

func (f *fakeVerifier) Authorize(ctx context.Context, proof *domain.IDProof) (domain.AuthToken, error) {
	f.calls++
	if f.authorizeErr != nil {
		return "", f.authorizeErr
	}
	return f.token, nil
}

// =============================================================================
// Tests
// =============================================================================

func TestAuthorize_WithoutAccount(t *testing.T) {
	v := &fakeVerifier{}
	s := New(&fakeWallet{}, v)

	_, err := s.Authorize(context.Background())
	if !errors.Is(err, ErrNoAccount) {
		t.Fatalf("Expected ErrNoAccount, got %v", err)
	}
	if v.calls != 0 {
		t.Errorf("Expected no verifier calls, got %d", v.calls)
	}
}

func TestAuthorize_HappyPath(t *testing.T) {
	w := &fakeWallet{account: "aa"}
	v := &fakeVerifier{token: "tok-1"}
	s := New(w, v)

	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	token, err := s.Authorize(context.Background())
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("Expected token tok-1, got %s", token)
	}
	if got, ok := s.Token(); !ok || got != "tok-1" {
		t.Errorf("Token() = %q, %v", got, ok)
	}
}

func TestConnect_PropagatesRejection(t *testing.T) {
	rejected := errors.New("user rejected connection")
	s := New(&fakeWallet{connectErr: rejected}, &fakeVerifier{})

	if _, err := s.Connect(context.Background()); !errors.Is(err, rejected) {
		t.Fatalf("Expected rejection to propagate unchanged, got %v", err)
	}
	if _, ok := s.Account(); ok {
		t.Error("Expected no account after failed connect")
	}
}

func TestAuthorize_SurfacesSingleError(t *testing.T) {
	w := &fakeWallet{account: "aa"}
	v := &fakeVerifier{authorizeErr: errors.New("invalid proof")}
	s := New(w, v)

	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	_, err := s.Authorize(context.Background())
	if err == nil {
		t.Fatal("Expected error from failed exchange")
	}
	if _, ok := s.Token(); ok {
		t.Error("Expected no token after failed authorize")
	}
}

func TestDisconnect_ClearsState(t *testing.T) {
	w := &fakeWallet{account: "aa"}
	v := &fakeVerifier{token: "tok"}
	s := New(w, v)

	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := s.Authorize(context.Background()); err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	s.Disconnect()
	if _, ok := s.Account(); ok {
		t.Error("Expected account cleared")
	}
	if _, ok := s.Token(); ok {
		t.Error("Expected token cleared")
	}
}

func TestConnect_ResetsToken(t *testing.T) {
	w := &fakeWallet{account: "aa"}
	v := &fakeVerifier{token: "tok"}
	s := New(w, v)

	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := s.Authorize(context.Background()); err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	// Reconnecting starts a fresh session.
	if _, err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, ok := s.Token(); ok {
		t.Error("Expected token cleared on reconnect")
	}
}
