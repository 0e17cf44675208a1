package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

func createTestKeystore(t *testing.T, passphrase string, attrs map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.json")
	if _, err := CreateKeystore(path, passphrase, attrs); err != nil {
		t.Fatalf("CreateKeystore failed: %v", err)
	}
	return path
}

func TestConnect_RoundTrip(t *testing.T) {
	path := createTestKeystore(t, "hunter2", map[string]string{"nationality": "DK"})

	w := New(path, "hunter2")
	account, err := w.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if account.IsZero() {
		t.Fatal("Expected non-empty account address")
	}
	if _, err := account.Bytes(); err != nil {
		t.Errorf("Account address is not 32 raw bytes: %v", err)
	}

	got, ok := w.Account()
	if !ok || got != account {
		t.Errorf("Account() = %q, %v; want %q, true", got, ok, account)
	}

	w.Disconnect()
	if _, ok := w.Account(); ok {
		t.Error("Expected disconnected wallet to report no account")
	}
}

func TestConnect_WrongPassphrase(t *testing.T) {
	path := createTestKeystore(t, "correct", nil)

	w := New(path, "wrong")
	if _, err := w.Connect(context.Background()); err == nil {
		t.Fatal("Expected error for wrong passphrase")
	}
}

func TestSignMessage_VerifiesAgainstKeystoreKey(t *testing.T) {
	path := createTestKeystore(t, "pw", nil)

	w := New(path, "pw")
	account, err := w.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	payload := []byte("block_hash:deadbeef")
	sig, err := w.SignMessage(payload)
	if err != nil {
		t.Fatalf("SignMessage failed: %v", err)
	}

	ks, priv, err := OpenKeystore(path, "pw")
	if err != nil {
		t.Fatalf("OpenKeystore failed: %v", err)
	}
	pub := priv.Public().(ed25519.PublicKey)
	if hex.EncodeToString(pub) != ks.PublicKey {
		t.Fatal("Keystore public key mismatch")
	}

	ok, err := VerifyMessage(pub, account, payload, sig)
	if err != nil {
		t.Fatalf("VerifyMessage failed: %v", err)
	}
	if !ok {
		t.Error("Expected signature to verify")
	}

	// A different payload must not verify.
	ok, err = VerifyMessage(pub, account, []byte("other"), sig)
	if err != nil {
		t.Fatalf("VerifyMessage failed: %v", err)
	}
	if ok {
		t.Error("Expected signature over different payload to fail")
	}
}

func TestSignMessage_NotConnected(t *testing.T) {
	w := New("nowhere.json", "pw")
	if _, err := w.SignMessage([]byte("x")); err != ErrNotConnected {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestRequestIDProof(t *testing.T) {
	attrs := map[string]string{"nationality": "DK", "nationalIdNo": "N-123"}
	path := createTestKeystore(t, "pw", attrs)

	w := New(path, "pw")
	account, err := w.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	statement := domain.Statement{
		{Kind: domain.StatementReveal, Tag: domain.AttributeNationality},
		{Kind: domain.StatementReveal, Tag: domain.AttributeNationalID},
	}
	challenge := domain.Challenge(hex.EncodeToString(make([]byte, 32)))

	proof, err := w.RequestIDProof(context.Background(), account, statement, challenge)
	if err != nil {
		t.Fatalf("RequestIDProof failed: %v", err)
	}
	if len(proof.Revealed) != 2 {
		t.Fatalf("Expected 2 revealed attributes, got %d", len(proof.Revealed))
	}
	if tag, ok := proof.Satisfies(statement); !ok {
		t.Errorf("Proof does not satisfy statement, missing %s", tag)
	}

	// Signature must cover challenge + attributes.
	_, priv, err := OpenKeystore(path, "pw")
	if err != nil {
		t.Fatalf("OpenKeystore failed: %v", err)
	}
	payload, err := proof.SignedPayload()
	if err != nil {
		t.Fatalf("SignedPayload failed: %v", err)
	}
	ok, err := VerifyMessage(priv.Public().(ed25519.PublicKey), account, payload, proof.Signature)
	if err != nil {
		t.Fatalf("VerifyMessage failed: %v", err)
	}
	if !ok {
		t.Error("Expected proof signature to verify")
	}
}

func TestRequestIDProof_MissingAttribute(t *testing.T) {
	path := createTestKeystore(t, "pw", map[string]string{"nationality": "DK"})

	w := New(path, "pw")
	account, err := w.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	statement := domain.Statement{
		{Kind: domain.StatementReveal, Tag: domain.AttributeNationalID},
	}
	if _, err := w.RequestIDProof(context.Background(), account, statement, "00"); err == nil {
		t.Fatal("Expected error for attribute missing from identity")
	}
}

func TestRequestIDProof_WrongAccount(t *testing.T) {
	path := createTestKeystore(t, "pw", nil)

	w := New(path, "pw")
	if _, err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	other := domain.AccountAddress(hex.EncodeToString(make([]byte, 32)))
	if _, err := w.RequestIDProof(context.Background(), other, nil, "00"); err == nil {
		t.Fatal("Expected error for proof request on a different account")
	}
}
