// Package wallet implements a keystore-backed account wallet: an encrypted
// key file holding an ed25519 key pair and the identity attributes the
// account was created with. It stands in for a browser wallet extension:
// connecting decrypts the keystore, disconnecting drops the key material.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

const (
	keystoreVersion = 1
	saltBytes       = 16
	kekBytes        = 32
)

// Keystore is the on-disk key file format.
type Keystore struct {
	Version    int               `json:"version"`
	Address    string            `json:"address"`
	PublicKey  string            `json:"public_key"` // hex
	Attributes map[string]string `json:"attributes"` // identity attributes by tag
	Crypto     keystoreCrypto    `json:"crypto"`
}

type keystoreCrypto struct {
	KDF        string `json:"kdf"` // argon2id
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"` // encrypted ed25519 seed
}

func deriveKEK(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1<<16, 8, 1, kekBytes)
}

// CreateKeystore generates a fresh account key pair, encrypts the seed under
// the passphrase and writes the key file. The account address is derived
// from the public key.
func CreateKeystore(path, passphrase string, attributes map[string]string) (domain.AccountAddress, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	kek := deriveKEK(passphrase, salt)
	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, priv.Seed(), nil)

	address := AddressFromPublicKey(pub)
	ks := Keystore{
		Version:    keystoreVersion,
		Address:    string(address),
		PublicKey:  hex.EncodeToString(pub),
		Attributes: attributes,
		Crypto: keystoreCrypto{
			KDF:        "argon2id",
			Salt:       base64.StdEncoding.EncodeToString(salt),
			Nonce:      base64.StdEncoding.EncodeToString(nonce),
			Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}

	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode keystore: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write keystore: %w", err)
	}
	return address, nil
}

// OpenKeystore reads and decrypts a key file, returning the keystore
// metadata and the account's private key.
func OpenKeystore(path, passphrase string) (*Keystore, ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read keystore: %w", err)
	}

	var ks Keystore
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, nil, fmt.Errorf("parse keystore: %w", err)
	}
	if ks.Version != keystoreVersion {
		return nil, nil, fmt.Errorf("unsupported keystore version %d", ks.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(ks.Crypto.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(ks.Crypto.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(ks.Crypto.Ciphertext)
	if err != nil {
		return nil, nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	kek := deriveKEK(passphrase, salt)
	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, nil, fmt.Errorf("init cipher: %w", err)
	}
	seed, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypt keystore: wrong passphrase or corrupted file: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, nil, fmt.Errorf("invalid key seed length %d", len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	derived := AddressFromPublicKey(priv.Public().(ed25519.PublicKey))
	if string(derived) != ks.Address {
		return nil, nil, fmt.Errorf("keystore address mismatch: file says %s, key derives %s", ks.Address, derived)
	}
	return &ks, priv, nil
}

// AddressFromPublicKey derives the account address from the account's
// public key.
func AddressFromPublicKey(pub ed25519.PublicKey) domain.AccountAddress {
	sum := sha256.Sum256(pub)
	return domain.AccountAddress(hex.EncodeToString(sum[:]))
}
