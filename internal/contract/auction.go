// Package contract implements the typed client for the auction contract.
// Every mutating call is dry-run first: a rejected dry run surfaces the
// decoded reject reason and nothing is submitted; a successful dry run
// fixes the energy budget (used energy plus a safety margin) for the real
// submission.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
)

// Entrypoints of the auction contract.
const (
	EntrypointAddItem       = "addItem"
	EntrypointBid           = "bid"
	EntrypointFinalize      = "finalize"
	EntrypointView          = "view"
	EntrypointViewItemState = "viewItemState"
)

// EnergyEpsilon is the fixed safety margin added to the dry-run energy
// when submitting the real transaction.
const EnergyEpsilon domain.Energy = 1000

// transactionExpiry is how far in the future submitted transactions expire.
const transactionExpiry = 10 * time.Minute

var (
	// ErrDryRunRejected is wrapped by errors for dry runs the contract rejected.
	ErrDryRunRejected = errors.New("contract: dry run rejected")
	// ErrNoReturnValue is wrapped when a dry run succeeds without a return value.
	ErrNoReturnValue = errors.New("contract: dry run returned no value")
	// ErrDecode is wrapped when a return value cannot be decoded. Distinct
	// from rejection so callers can tell a malformed response from a
	// contract-level failure.
	ErrDecode = errors.New("contract: cannot decode return value")
)

// NodeClient is the part of the node API the auction client needs.
type NodeClient interface {
	InvokeInstance(ctx context.Context, req node.InvokeRequest) (*node.InvokeResult, error)
	SendBlockItem(ctx context.Context, req node.SubmitRequest) (domain.TransactionHash, error)
	GetNextNonce(ctx context.Context, address domain.AccountAddress) (domain.Nonce, error)
}

// Signer signs transaction payloads for a connected account.
type Signer interface {
	Account() (domain.AccountAddress, bool)
	SignMessage(payload []byte) ([]byte, error)
}

// Client is a typed client for one auction contract instance.
type Client struct {
	node    NodeClient
	address domain.ContractAddress
}

// NewClient creates a client for the auction contract at the given address.
func NewClient(nodeClient NodeClient, address domain.ContractAddress) *Client {
	return &Client{node: nodeClient, address: address}
}

// Address returns the contract instance address.
func (c *Client) Address() domain.ContractAddress {
	return c.address
}

// AddItem puts a new item up for auction. Dry-runs first, then submits with
// the computed energy budget and returns the transaction hash.
func (c *Client) AddItem(ctx context.Context, signer Signer, params domain.AddItemParams) (domain.TransactionHash, error) {
	return c.update(ctx, signer, EntrypointAddItem, params)
}

// Bid places a bid on an auctioned item. The bid amount is a CIS-2 token
// transfer carried in the parameters.
func (c *Client) Bid(ctx context.Context, signer Signer, params domain.BidParams) (domain.TransactionHash, error) {
	return c.update(ctx, signer, EntrypointBid, params)
}

// Finalize closes an ended auction and settles the highest bid.
func (c *Client) Finalize(ctx context.Context, signer Signer, params domain.FinalizeParams) (domain.TransactionHash, error) {
	return c.update(ctx, signer, EntrypointFinalize, params)
}

// ViewItemState returns the on-chain state of one auctioned item.
func (c *Client) ViewItemState(ctx context.Context, itemIndex uint64) (*domain.ItemState, error) {
	var state domain.ItemState
	if err := c.view(ctx, EntrypointViewItemState, domain.FinalizeParams{ItemIndex: itemIndex}, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// View returns the full auction contract state.
func (c *Client) View(ctx context.Context) (*domain.AuctionState, error) {
	var state domain.AuctionState
	if err := c.view(ctx, EntrypointView, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// DryRun simulates an entrypoint call without submitting. Exposed for the
// sponsor service, which runs its own submission path.
func (c *Client) DryRun(ctx context.Context, invoker domain.AccountAddress, entrypoint string, params any) (*node.InvokeResult, error) {
	parameter, err := encodeParameter(params)
	if err != nil {
		return nil, err
	}
	result, err := c.node.InvokeInstance(ctx, node.InvokeRequest{
		Invoker:    invoker,
		Contract:   c.address,
		Entrypoint: entrypoint,
		Parameter:  parameter,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// update is the dry-run-then-execute flow shared by all mutating entrypoints.
func (c *Client) update(ctx context.Context, signer Signer, entrypoint string, params any) (domain.TransactionHash, error) {
	sender, ok := signer.Account()
	if !ok {
		return "", fmt.Errorf("contract: %s: no account connected", entrypoint)
	}

	result, err := c.DryRun(ctx, sender, entrypoint, params)
	if err != nil {
		return "", err
	}
	if err := CheckOutcome(entrypoint, result); err != nil {
		return "", err
	}

	parameter, err := encodeParameter(params)
	if err != nil {
		return "", err
	}
	nonce, err := c.node.GetNextNonce(ctx, sender)
	if err != nil {
		return "", err
	}

	req := node.SubmitRequest{
		Sender:     sender,
		Nonce:      nonce,
		Contract:   c.address,
		Entrypoint: entrypoint,
		Parameter:  parameter,
		Energy:     result.UsedEnergy + EnergyEpsilon,
		Expiry:     time.Now().Add(transactionExpiry),
	}
	payload, err := SigningPayload(req)
	if err != nil {
		return "", err
	}
	req.Signature, err = signer.SignMessage(payload)
	if err != nil {
		return "", err
	}

	hash, err := c.node.SendBlockItem(ctx, req)
	if err != nil {
		return "", fmt.Errorf("contract: %s: submit: %w", entrypoint, err)
	}
	return hash, nil
}

// view is the dry-run-and-decode flow shared by the read-only entrypoints.
func (c *Client) view(ctx context.Context, entrypoint string, params, out any) error {
	result, err := c.DryRun(ctx, "", entrypoint, params)
	if err != nil {
		return err
	}
	if err := CheckOutcome(entrypoint, result); err != nil {
		return err
	}
	if err := json.Unmarshal(result.ReturnValue, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, entrypoint, err)
	}
	return nil
}

// CheckOutcome enforces the dry-run gate: a failure tag or a success
// without a return value never reaches submission. Exported for the
// sponsor service, which runs its own submission path.
func CheckOutcome(entrypoint string, result *node.InvokeResult) error {
	if result.Tag != node.OutcomeSuccess {
		return fmt.Errorf("%w: %s: reason %s (code %d), response %s",
			ErrDryRunRejected, entrypoint, result.RejectReason, int32(result.RejectReason), result.RawResponse)
	}
	if len(result.ReturnValue) == 0 {
		return fmt.Errorf("%w: %s", ErrNoReturnValue, entrypoint)
	}
	return nil
}

func encodeParameter(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("contract: encode parameter: %w", err)
	}
	return data, nil
}

// SigningPayload returns the canonical byte string a sender signs for a
// submission. The signature field itself is excluded.
func SigningPayload(req node.SubmitRequest) ([]byte, error) {
	unsigned := req
	unsigned.Signature = nil
	data, err := json.Marshal(unsigned)
	if err != nil {
		return nil, fmt.Errorf("contract: encode signing payload: %w", err)
	}
	return data, nil
}
