package domain

import (
	"encoding/hex"
	"fmt"
)

// AccountAddressLength is the raw byte length of an account address.
const AccountAddressLength = 32

// AccountAddress is the hex-encoded address of an on-chain account.
// It is treated as an opaque handle everywhere except when building the
// message-signing prepend, which needs the raw bytes.
type AccountAddress string

// Bytes decodes the address into its raw 32-byte form.
func (a AccountAddress) Bytes() ([]byte, error) {
	raw, err := hex.DecodeString(string(a))
	if err != nil {
		return nil, fmt.Errorf("invalid account address %q: %w", a, err)
	}
	if len(raw) != AccountAddressLength {
		return nil, fmt.Errorf("invalid account address length: expected %d, got %d", AccountAddressLength, len(raw))
	}
	return raw, nil
}

// IsZero reports whether no account is set.
func (a AccountAddress) IsZero() bool {
	return a == ""
}

// AuthToken is an opaque bearer token issued by the verifier after a
// successful proof validation. Held in memory for the session only.
type AuthToken string

// Challenge is a hex-encoded single-use value issued by the verifier.
type Challenge string

// Bytes decodes the challenge into raw bytes.
func (c Challenge) Bytes() ([]byte, error) {
	raw, err := hex.DecodeString(string(c))
	if err != nil {
		return nil, fmt.Errorf("invalid challenge: %w", err)
	}
	return raw, nil
}

// TransactionHash identifies a submitted transaction.
type TransactionHash string

// Nonce is the sequence number of an account.
type Nonce uint64
