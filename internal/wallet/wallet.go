package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// ErrNotConnected is returned for signing operations on a disconnected wallet.
var ErrNotConnected = errors.New("wallet: not connected")

// Wallet is a connectable account wallet backed by an encrypted keystore.
type Wallet struct {
	path       string
	passphrase string

	mu         sync.Mutex
	account    domain.AccountAddress
	key        ed25519.PrivateKey
	attributes map[string]string
}

// New creates a wallet for the given key file. No key material is loaded
// until Connect.
func New(path, passphrase string) *Wallet {
	return &Wallet{path: path, passphrase: passphrase}
}

// Connect decrypts the keystore and returns the account address. A wrong
// passphrase or unreadable key file is propagated unchanged.
func (w *Wallet) Connect(ctx context.Context) (domain.AccountAddress, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ks, priv, err := OpenKeystore(w.path, w.passphrase)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.account = domain.AccountAddress(ks.Address)
	w.key = priv
	w.attributes = ks.Attributes
	return w.account, nil
}

// Disconnect drops the account and key material.
func (w *Wallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.key {
		w.key[i] = 0
	}
	w.account = ""
	w.key = nil
	w.attributes = nil
}

// Account returns the connected account address, if any.
func (w *Wallet) Account() (domain.AccountAddress, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account, !w.account.IsZero()
}

// SignMessage signs an application payload under the wallet message scheme.
// The signed bytes are sha256(address || 8 zero bytes || payload). The
// 8 zero bytes occupy the slot a transaction nonce would, so a signed
// message can never be replayed as a transaction (nonces start at 1).
func (w *Wallet) SignMessage(payload []byte) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.account.IsZero() {
		return nil, ErrNotConnected
	}
	digest, err := MessageDigest(w.account, payload)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(w.key, digest), nil
}

// RequestIDProof builds a proof of the statement's attributes bound to the
// given challenge: it reveals the demanded attributes from the keystore
// identity and signs the challenge together with their canonical encoding.
func (w *Wallet) RequestIDProof(ctx context.Context, account domain.AccountAddress, statement domain.Statement, challenge domain.Challenge) (*domain.IDProof, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	connected := w.account
	attributes := w.attributes
	w.mu.Unlock()

	if connected.IsZero() {
		return nil, ErrNotConnected
	}
	if account != connected {
		return nil, fmt.Errorf("wallet: proof requested for %s but connected account is %s", account, connected)
	}

	revealed := make([]domain.RevealedAttribute, 0, len(statement))
	for _, item := range statement {
		if item.Kind != domain.StatementReveal {
			return nil, fmt.Errorf("wallet: unsupported statement kind %q", item.Kind)
		}
		value, ok := attributes[string(item.Tag)]
		if !ok {
			return nil, fmt.Errorf("wallet: identity has no attribute %q", item.Tag)
		}
		revealed = append(revealed, domain.RevealedAttribute{Tag: item.Tag, Value: value})
	}

	proof := &domain.IDProof{
		Account:   account,
		Challenge: challenge,
		Revealed:  revealed,
	}
	payload, err := proof.SignedPayload()
	if err != nil {
		return nil, err
	}
	sig, err := w.SignMessage(payload)
	if err != nil {
		return nil, err
	}
	proof.Signature = sig
	return proof, nil
}

// MessageDigest computes the digest the wallet signs for a message payload.
func MessageDigest(account domain.AccountAddress, payload []byte) ([]byte, error) {
	addr, err := account.Bytes()
	if err != nil {
		return nil, err
	}
	prepend := make([]byte, 0, len(addr)+8+len(payload))
	prepend = append(prepend, addr...)
	prepend = append(prepend, make([]byte, 8)...)
	prepend = append(prepend, payload...)
	digest := sha256.Sum256(prepend)
	return digest[:], nil
}

// VerifyMessage checks a wallet message signature against the account's
// public key.
func VerifyMessage(pub ed25519.PublicKey, account domain.AccountAddress, payload, sig []byte) (bool, error) {
	digest, err := MessageDigest(account, payload)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, digest, sig), nil
}
