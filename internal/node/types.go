package node

import (
	"encoding/json"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// Wire types of the node API. The dry-run result tags follow the contract
// invocation convention: "success" carries a return value and the energy
// used, "failure" carries a reject reason code.

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// InvokeRequest simulates a contract invocation against the last finalized
// block without submitting anything.
type InvokeRequest struct {
	Invoker    domain.AccountAddress  `json:"invoker,omitempty"`
	Contract   domain.ContractAddress `json:"contract"`
	Entrypoint string                 `json:"entrypoint"`
	Parameter  json.RawMessage        `json:"parameter,omitempty"`
	Energy     domain.Energy          `json:"energy"` // cap for the simulation
}

// InvokeResult is the outcome of a dry run.
type InvokeResult struct {
	Tag          string              `json:"tag"` // "success" or "failure"
	ReturnValue  json.RawMessage     `json:"return_value,omitempty"`
	UsedEnergy   domain.Energy       `json:"used_energy"`
	RejectReason domain.RejectReason `json:"reject_reason,omitempty"`
	RawResponse  json.RawMessage     `json:"raw_response,omitempty"`
}

// SubmitRequest submits a signed contract update transaction.
type SubmitRequest struct {
	Sender     domain.AccountAddress  `json:"sender"`
	Nonce      domain.Nonce           `json:"nonce"`
	Contract   domain.ContractAddress `json:"contract"`
	Entrypoint string                 `json:"entrypoint"`
	Parameter  json.RawMessage        `json:"parameter,omitempty"`
	Energy     domain.Energy          `json:"energy"`
	Expiry     time.Time              `json:"expiry"`
	Signature  []byte                 `json:"signature"`
}

// SubmitResult carries the hash of an accepted transaction.
type SubmitResult struct {
	Hash domain.TransactionHash `json:"hash"`
}

// AccountInfoRequest looks up an account by address.
type AccountInfoRequest struct {
	Address domain.AccountAddress `json:"address"`
}

// AccountInfo is the registered state of an account.
type AccountInfo struct {
	Address   domain.AccountAddress `json:"address"`
	PublicKey string                `json:"public_key"` // hex ed25519
	Nonce     domain.Nonce          `json:"nonce"`
	Balance   uint64                `json:"balance"`
}

// ConsensusInfo reports chain progress.
type ConsensusInfo struct {
	FinalizedHeight uint64                 `json:"finalized_height"`
	GenesisHash     string                 `json:"genesis_hash"`
	FinalizedTime   time.Time              `json:"finalized_time"`
	FinalizedBlock  domain.TransactionHash `json:"finalized_block"`
}

// BlockEventsRequest fetches contract events of one finalized block.
type BlockEventsRequest struct {
	Height uint64 `json:"height"`
}

// BlockEvents is the ordered list of contract events in a block.
type BlockEvents struct {
	Height uint64                 `json:"height"`
	Events []domain.ContractEvent `json:"events"`
}
